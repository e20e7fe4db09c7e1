package setup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mil-ad/btspeaker/internal/bluetooth"
)

// Audio is the part of the audio router setup and teardown need.
type Audio interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context)
}

// ConfigureAdapter powers the adapter on and sets its alias.
func ConfigureAdapter(ctrl bluetooth.Controller, name string) StepFunc {
	return func(ctx context.Context) error {
		if err := ctrl.SetPowered(ctx, true); err != nil {
			return fmt.Errorf("power on: %w", err)
		}
		if err := ctrl.SetAlias(ctx, name); err != nil {
			return fmt.Errorf("set alias: %w", err)
		}
		return nil
	}
}

// ClearPairings removes every paired device so phones pair from scratch.
// Individual removals that fail are logged.
func ClearPairings(ctrl bluetooth.Controller, logger zerolog.Logger) StepFunc {
	return func(ctx context.Context) error {
		devs, err := ctrl.ListPaired(ctx)
		if err != nil {
			return fmt.Errorf("list paired devices: %w", err)
		}
		for _, d := range devs {
			if err := ctrl.Remove(ctx, d.Address); err != nil {
				logger.Warn().Err(err).Str("addr", d.Address).Msg("could not remove old pairing")
				continue
			}
			logger.Info().Str("addr", d.Address).Str("name", d.Name).Msg("removed old pairing")
		}
		return nil
	}
}

func ConfigureAudio(audio Audio) StepFunc {
	return audio.Setup
}

// EnterPairingMode makes the adapter visible and willing to pair.
func EnterPairingMode(ctrl bluetooth.Controller) StepFunc {
	return func(ctx context.Context) error {
		if err := ctrl.SetDiscoverable(ctx, true); err != nil {
			return fmt.Errorf("discoverable on: %w", err)
		}
		if err := ctrl.SetPairable(ctx, true); err != nil {
			return fmt.Errorf("pairable on: %w", err)
		}
		return nil
	}
}

// ReconnectPaired asks each paired device to connect. Failures are
// logged; a phone out of range is not an error.
func ReconnectPaired(ctrl bluetooth.Controller, logger zerolog.Logger) StepFunc {
	return func(ctx context.Context) error {
		devs, err := ctrl.ListPaired(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("could not list paired devices")
			return nil
		}
		if len(devs) == 0 {
			logger.Info().Msg("no paired devices yet")
		}
		for _, d := range devs {
			if err := ctrl.Connect(ctx, d.Address); err != nil {
				logger.Warn().Err(err).Str("addr", d.Address).Msg("connect to paired device failed")
				continue
			}
			logger.Info().Str("addr", d.Address).Str("name", d.Name).Msg("connected to paired device")
		}
		return nil
	}
}

// Teardown hides the adapter and unloads the audio modules btspeaker
// loaded. Every failure is logged and none is returned.
func Teardown(ctx context.Context, ctrl bluetooth.Controller, audio Audio, logger zerolog.Logger) {
	if ctrl != nil {
		if err := ctrl.SetDiscoverable(ctx, false); err != nil {
			logger.Warn().Err(err).Msg("teardown: discoverable off failed")
		}
		if err := ctrl.SetPairable(ctx, false); err != nil {
			logger.Warn().Err(err).Msg("teardown: pairable off failed")
		}
	}
	if audio != nil {
		audio.Teardown(ctx)
	}
	logger.Info().Msg("teardown complete")
}
