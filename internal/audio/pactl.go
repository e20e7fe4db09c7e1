// Package audio routes Bluetooth A2DP streams into the local audio server
// through pactl, which both PulseAudio and pipewire-pulse understand.
package audio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mil-ad/btspeaker/internal/command"
)

const pactlBinary = "pactl"

// Backend is the audio server behind pactl.
type Backend int

const (
	BackendUnknown Backend = iota
	BackendPulseAudio
	BackendPipeWire
)

func (b Backend) String() string {
	switch b {
	case BackendPulseAudio:
		return "pulseaudio"
	case BackendPipeWire:
		return "pipewire"
	default:
		return "unknown"
	}
}

// bluetoothModules are loaded on PulseAudio only; PipeWire handles
// Bluetooth discovery and policy in its session manager.
var bluetoothModules = []string{
	"module-bluetooth-policy",
	"module-bluetooth-discover",
}

// AutoSink selects the first analog ALSA output.
const AutoSink = "auto"

type Config struct {
	AutoRouteToSpeakers bool
	EnableLoopback      bool
	DefaultSink         string
}

// Entry is one row of `pactl list short sinks|sources|modules`.
type Entry struct {
	Index string
	Name  string
	Args  string
}

// Router is the Audio Router collaborator.
type Router struct {
	runner command.Runner
	cfg    Config
	logger zerolog.Logger

	mu        sync.Mutex
	backend   Backend
	loaded    []string          // module indices loaded by Setup
	loopbacks map[string]string // source name -> module index
}

func NewRouter(runner command.Runner, cfg Config, logger zerolog.Logger) *Router {
	if cfg.DefaultSink == "" {
		cfg.DefaultSink = AutoSink
	}
	return &Router{
		runner:    runner,
		cfg:       cfg,
		logger:    logger,
		loopbacks: make(map[string]string),
	}
}

func (r *Router) pactl(ctx context.Context, args ...string) (string, error) {
	res, err := r.runner.Run(ctx, command.New(pactlBinary, args...))
	return res.Stdout, err
}

// Detect asks the audio server for its identity. An error means the
// server is not reachable.
func (r *Router) Detect(ctx context.Context) (Backend, error) {
	out, err := r.pactl(ctx, "info")
	if err != nil {
		return BackendUnknown, err
	}
	backend := BackendPulseAudio
	if strings.Contains(out, "PipeWire") {
		backend = BackendPipeWire
	}
	r.mu.Lock()
	r.backend = backend
	r.mu.Unlock()
	return backend, nil
}

func (r *Router) Backend() Backend {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend
}

// Setup loads the Bluetooth discovery and policy modules on PulseAudio.
// A module that fails to load is most likely already loaded, so failures
// are logged and not returned.
func (r *Router) Setup(ctx context.Context) error {
	backend := r.Backend()
	if backend == BackendUnknown {
		var err error
		if backend, err = r.Detect(ctx); err != nil {
			return fmt.Errorf("detect audio server: %w", err)
		}
	}
	if backend == BackendPipeWire {
		r.logger.Info().Msg("pipewire handles bluetooth modules, nothing to load")
		return nil
	}
	for _, mod := range bluetoothModules {
		idx, err := r.loadModule(ctx, mod)
		if err != nil {
			r.logger.Warn().Err(err).Str("module", mod).Msg("could not load module (might already be loaded)")
			continue
		}
		r.mu.Lock()
		r.loaded = append(r.loaded, idx)
		r.mu.Unlock()
		r.logger.Info().Str("module", mod).Str("index", idx).Msg("loaded module")
	}
	return nil
}

func (r *Router) loadModule(ctx context.Context, name string, args ...string) (string, error) {
	out, err := r.pactl(ctx, append([]string{"load-module", name}, args...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Router) ListSinks(ctx context.Context) ([]Entry, error) {
	return r.listShort(ctx, "sinks")
}

func (r *Router) ListSources(ctx context.Context) ([]Entry, error) {
	return r.listShort(ctx, "sources")
}

func (r *Router) listShort(ctx context.Context, kind string) ([]Entry, error) {
	out, err := r.pactl(ctx, "list", "short", kind)
	if err != nil {
		return nil, err
	}
	return ParseShortList(out), nil
}

// RouteDevice makes sure audio from addr reaches the speakers: it points
// the default sink at the configured output and, on PulseAudio, loops the
// device's source into it. Each step is attempted even if the previous
// one failed; the errors are joined.
func (r *Router) RouteDevice(ctx context.Context, addr string) error {
	var errs []error
	if r.cfg.AutoRouteToSpeakers {
		if err := r.setDefaultSink(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.cfg.EnableLoopback {
		if err := r.ensureLoopback(ctx, addr); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Router) setDefaultSink(ctx context.Context) error {
	sink := r.cfg.DefaultSink
	if sink == AutoSink {
		sinks, err := r.ListSinks(ctx)
		if err != nil {
			return fmt.Errorf("list sinks: %w", err)
		}
		sink = pickSpeakerSink(sinks)
		if sink == "" {
			r.logger.Warn().Int("sinks", len(sinks)).Msg("no analog output sink found, leaving default sink unchanged")
			return nil
		}
	}
	if _, err := r.pactl(ctx, "set-default-sink", sink); err != nil {
		return fmt.Errorf("set default sink %s: %w", sink, err)
	}
	r.logger.Info().Str("sink", sink).Msg("set default audio sink")
	return nil
}

func (r *Router) ensureLoopback(ctx context.Context, addr string) error {
	if r.Backend() == BackendPipeWire {
		r.logger.Debug().Str("addr", addr).Msg("pipewire links bluetooth sources itself, skipping loopback")
		return nil
	}
	sources, err := r.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	source := pickBluetoothSource(sources, addr)
	if source == "" {
		r.logger.Warn().Str("addr", addr).Msg("no bluetooth source found for device")
		return nil
	}

	r.mu.Lock()
	_, have := r.loopbacks[source]
	r.mu.Unlock()
	if have {
		return nil
	}
	if idx, ok := r.existingLoopback(ctx, source); ok {
		r.mu.Lock()
		r.loopbacks[source] = idx
		r.mu.Unlock()
		return nil
	}

	idx, err := r.loadModule(ctx, "module-loopback", "source="+source)
	if err != nil {
		return fmt.Errorf("loopback for %s: %w", source, err)
	}
	r.mu.Lock()
	r.loopbacks[source] = idx
	r.mu.Unlock()
	r.logger.Info().Str("addr", addr).Str("source", source).Str("index", idx).Msg("created loopback for bluetooth source")
	return nil
}

// existingLoopback finds a module-loopback already reading from source,
// for instance one left behind by an earlier run.
func (r *Router) existingLoopback(ctx context.Context, source string) (string, bool) {
	mods, err := r.listShort(ctx, "modules")
	if err != nil {
		return "", false
	}
	for _, m := range mods {
		if m.Name == "module-loopback" && strings.Contains(m.Args, "source="+source) {
			return m.Index, true
		}
	}
	return "", false
}

// Teardown unloads every module this router loaded. Errors are logged.
func (r *Router) Teardown(ctx context.Context) {
	r.mu.Lock()
	indices := make([]string, 0, len(r.loopbacks)+len(r.loaded))
	for _, idx := range r.loopbacks {
		indices = append(indices, idx)
	}
	indices = append(indices, r.loaded...)
	r.loopbacks = make(map[string]string)
	r.loaded = nil
	r.mu.Unlock()

	for _, idx := range indices {
		if idx == "" {
			continue
		}
		if _, err := r.pactl(ctx, "unload-module", idx); err != nil {
			r.logger.Warn().Err(err).Str("index", idx).Msg("unload module failed")
		}
	}
}

// ParseShortList parses tab-separated `pactl list short` output. Rows
// with fewer than two columns are skipped.
func ParseShortList(out string) []Entry {
	var entries []Entry
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			cols = strings.Fields(line)
		}
		if len(cols) < 2 {
			continue
		}
		e := Entry{Index: strings.TrimSpace(cols[0]), Name: strings.TrimSpace(cols[1])}
		if len(cols) > 2 {
			e.Args = strings.TrimSpace(cols[2])
		}
		entries = append(entries, e)
	}
	return entries
}

func pickSpeakerSink(sinks []Entry) string {
	for _, s := range sinks {
		if strings.Contains(s.Name, "alsa_output") && strings.Contains(s.Name, "analog-stereo") {
			return s.Name
		}
	}
	return ""
}

// pickBluetoothSource prefers the bluez source for addr and falls back to
// the first bluez source.
func pickBluetoothSource(sources []Entry, addr string) string {
	underscored := strings.ReplaceAll(strings.ToUpper(addr), ":", "_")
	var first string
	for _, s := range sources {
		if !strings.Contains(s.Name, "bluez") || strings.HasSuffix(s.Name, ".monitor") {
			continue
		}
		upper := strings.ToUpper(s.Name)
		if addr != "" && (strings.Contains(upper, underscored) || strings.Contains(upper, strings.ToUpper(addr))) {
			return s.Name
		}
		if first == "" {
			first = s.Name
		}
	}
	return first
}
