package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/mil-ad/btspeaker/internal/agent"
	"github.com/mil-ad/btspeaker/internal/config"
)

const (
	modePairing = "pairing"
	modePlayer  = "player"
	modeSetup   = "setup"
	modeStatus  = "status"
)

type options struct {
	mode       string
	policy     string
	configPath string
	backend    string
	force      bool
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := pflag.NewFlagSet("btspeaker", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.mode, "mode", "m", modePairing, "pairing | player | setup | status")
	fs.StringVarP(&o.policy, "policy", "p", "", "auto-accept | fixed-pin | interactive | reject (default from bluetooth.auto_accept_pairing)")
	fs.StringVarP(&o.configPath, "config", "c", "", "config file (default "+config.Path()+")")
	fs.StringVar(&o.backend, "backend", "", "bluetooth backend: bluetoothctl | dbus (overrides config)")
	fs.BoolVarP(&o.force, "force", "f", false, "remove old pairings and accept any pairing question")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	switch o.mode {
	case modePairing, modePlayer, modeSetup, modeStatus:
	default:
		return o, fmt.Errorf("unknown mode %q (want pairing, player, setup or status)", o.mode)
	}
	if o.policy != "" {
		if _, err := agent.ParsePolicy(o.policy); err != nil {
			return o, err
		}
	}
	switch o.backend {
	case "", config.BackendBluetoothctl, config.BackendDBus:
	default:
		return o, fmt.Errorf("unknown backend %q (want bluetoothctl or dbus)", o.backend)
	}
	return o, nil
}

// resolvePolicy prefers the flag, then the config's auto-accept switch.
func resolvePolicy(flag string, cfg config.Config) agent.Policy {
	if flag != "" {
		p, _ := agent.ParsePolicy(flag)
		return p
	}
	if cfg.Bluetooth.AutoAcceptPairing {
		return agent.PolicyAutoAccept
	}
	return agent.PolicyFixedPIN
}
