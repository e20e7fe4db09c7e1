package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/mil-ad/btspeaker/internal/agent"
	"github.com/mil-ad/btspeaker/internal/audio"
	"github.com/mil-ad/btspeaker/internal/banner"
	"github.com/mil-ad/btspeaker/internal/bluetooth"
	"github.com/mil-ad/btspeaker/internal/command"
	"github.com/mil-ad/btspeaker/internal/config"
	"github.com/mil-ad/btspeaker/internal/ipc"
	"github.com/mil-ad/btspeaker/internal/logging"
	"github.com/mil-ad/btspeaker/internal/monitor"
	"github.com/mil-ad/btspeaker/internal/setup"
)

const teardownTimeout = 15 * time.Second

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if opts.mode == modeStatus {
		if err := runStatus(opts.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, created, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closer, err := logging.Init(logging.Config{
		Level:         cfg.Logging.LogLevel,
		File:          cfg.Logging.LogFile,
		ConsoleOutput: cfg.Logging.ConsoleOutput,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log := logging.WithComponent("main")
	if created {
		path := opts.configPath
		if path == "" {
			path = config.Path()
		}
		log.Info().Str("path", path).Msg("wrote default configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	code := run(ctx, opts, cfg, log)
	closer.Close()
	os.Exit(code)
}

// runStatus queries a running instance. It never writes a config file.
func runStatus(configPath string) error {
	cfg, err := config.LoadReadOnly(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := ipc.FetchStatus(ctx, cfg.SocketPath())
	if err != nil {
		return err
	}
	fmt.Println(banner.RenderStatus(st))
	return nil
}

func newController(backend string, cfg config.Config, runner command.Runner, log zerolog.Logger) bluetooth.Controller {
	if backend == config.BackendDBus {
		ctrl, err := bluetooth.NewDBusController(cfg.Bluetooth.Adapter, cfg.Monitor.CommandTimeout.Std())
		if err == nil {
			return ctrl
		}
		log.Warn().Err(err).Msg("bluez d-bus backend unavailable, falling back to bluetoothctl")
	}
	return bluetooth.NewCtlController(runner, logging.WithComponent("bluetooth"))
}

// run executes one mode and returns the process exit code.
func run(ctx context.Context, opts options, cfg config.Config, log zerolog.Logger) int {
	startedAt := time.Now().UTC()

	backend := cfg.Bluetooth.Backend
	if opts.backend != "" {
		backend = opts.backend
	}
	policy := resolvePolicy(opts.policy, cfg)

	log.Info().
		Str("mode", opts.mode).
		Str("policy", string(policy)).
		Str("backend", backend).
		Bool("force", opts.force).
		Msg("starting btspeaker")
	log.Info().
		Int("sample_rate", cfg.Audio.SampleRate).
		Int("buffer_size", cfg.Audio.BufferSize).
		Str("audio_format", cfg.Audio.AudioFormat).
		Bool("adaptive_bitrate", cfg.Audio.AdaptiveBitrate).
		Str("device_class", cfg.Bluetooth.DeviceClass).
		Msg("advisory settings, managed by the audio server and bluetoothd")

	runner := command.NewExecRunner(cfg.Monitor.CommandTimeout.Std())
	ctrl := newController(backend, cfg, runner, log)
	defer ctrl.Close()

	router := audio.NewRouter(runner, audio.Config{
		AutoRouteToSpeakers: cfg.Routing.AutoRouteToSpeakers,
		EnableLoopback:      cfg.Routing.EnableLoopback,
		DefaultSink:         cfg.Routing.DefaultSink,
	}, logging.WithComponent("audio"))

	g, gctx := errgroup.WithContext(ctx)

	var worker *agent.Worker
	if opts.mode == modePairing {
		worker = agent.NewWorker(
			agent.ExecStarter("bluetoothctl"),
			agent.NewResponder(policy, cfg.Bluetooth.PairingPIN, os.Stdin, os.Stdout),
			agent.Config{
				Policy:         policy,
				Aggressive:     opts.force,
				IdleTimeout:    cfg.Agent.IdleTimeout.Std(),
				RestartBackoff: cfg.Agent.RestartBackoff.Std(),
				MaxBackoff:     cfg.Agent.MaxBackoff.Std(),
			},
			logging.WithComponent("agent"),
		)
	}

	setupLog := logging.WithComponent("setup")
	seq := setup.NewSequencer(setupLog).
		Add("check prerequisites", setup.DefaultPrereqs().CheckStep(setupLog))
	if opts.force && opts.mode == modePairing {
		seq.Add("clear old pairings", setup.ClearPairings(ctrl, setupLog))
	}
	seq.Add("configure adapter", setup.ConfigureAdapter(ctrl, cfg.Bluetooth.DeviceName)).
		Add("configure audio", setup.ConfigureAudio(router))

	switch opts.mode {
	case modePairing:
		seq.Add("start pairing agent", func(context.Context) error {
			g.Go(func() error { return worker.Run(gctx) })
			return nil
		}).Add("enter pairing mode", setup.EnterPairingMode(ctrl))
	case modePlayer:
		seq.Add("reconnect paired devices", setup.ReconnectPaired(ctrl, setupLog)).
			Add("show audio sinks", func(ctx context.Context) error {
				sinks, err := router.ListSinks(ctx)
				if err != nil {
					setupLog.Warn().Err(err).Msg("could not list audio sinks")
					return nil
				}
				for _, s := range sinks {
					setupLog.Info().Str("index", s.Index).Str("sink", s.Name).Msg("audio sink")
				}
				return nil
			})
	}

	teardown := func() {
		if opts.mode == modeSetup {
			return
		}
		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
		defer cancel()
		setup.Teardown(tctx, ctrl, router, setupLog)
	}

	if err := seq.Run(gctx); err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("interrupted during setup")
			g.Wait()
			teardown()
			return 0
		}
		log.Error().Err(err).Msg("setup failed")
		return 1
	}

	adapter, err := ctrl.Adapter(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not read adapter state")
	} else if !adapter.Powered {
		log.Warn().Msg("adapter is still powered off")
	}

	ready := banner.Ready{
		DeviceName:   cfg.Bluetooth.DeviceName,
		Mode:         opts.mode,
		PIN:          cfg.Bluetooth.PairingPIN,
		Adapter:      adapter,
		AudioBackend: router.Backend().String(),
	}
	if worker != nil {
		ready.Policy = string(policy)
	}
	fmt.Println(banner.RenderReady(ready))

	if opts.mode == modeSetup {
		return 0
	}

	registry := monitor.NewRegistry()
	dispatcher := monitor.NewDispatcher(ctrl, router, registry,
		monitor.DispatcherConfig{MaxConnections: cfg.Bluetooth.MaxConnections},
		logging.WithComponent("monitor"))
	mon := monitor.New(ctrl, dispatcher,
		monitor.Config{Interval: cfg.Monitor.PollInterval.Std()},
		logging.WithComponent("monitor"))

	if watcher, ok := ctrl.(*bluetooth.DBusController); ok {
		wake, err := watcher.WatchConnections(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("cannot watch bluez signals, polling only")
		} else {
			mon.SetWake(wake)
		}
	}

	status := func(ctx context.Context) ipc.Status {
		ms := mon.Status()
		st := ipc.Status{
			Mode:         opts.mode,
			StartedAt:    startedAt,
			Adapter:      adapter,
			AudioBackend: router.Backend().String(),
			Connected:    ms.Connected,
			Devices:      registry.List(),
			Cycles:       ms.Cycles,
			LastSample:   ms.LastSample,
			LastError:    ms.LastError,
		}
		if a, err := ctrl.Adapter(ctx); err == nil {
			st.Adapter = a
		}
		if worker != nil {
			ws := worker.Status()
			st.Agent = &ws
			st.Policy = ws.Policy
		}
		return st
	}

	srv, err := ipc.Listen(cfg.SocketPath(), status, logging.WithComponent("ipc"))
	if err != nil {
		log.Warn().Err(err).Msg("status socket disabled")
	} else {
		g.Go(func() error { return srv.Serve(gctx) })
	}

	g.Go(func() error { return mon.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stopped with error")
	}
	log.Info().Msg("shutting down")
	teardown()
	return 0
}
