package monitor

import (
	"context"

	"github.com/rs/zerolog"
)

// Cycle is everything one polling pass hands to the Dispatcher.
type Cycle struct {
	ID      string
	Events  []Event
	Current Snapshot
	Names   map[string]string
}

// Dispatcher reacts to connection events. Connected devices are trusted,
// routed to the speakers and logged; disconnected devices are only
// logged. Reaction failures are logged and never stop later reactions.
type Dispatcher struct {
	truster        Truster
	router         Router
	registry       *Registry
	maxConnections int
	logger         zerolog.Logger
}

type DispatcherConfig struct {
	// MaxConnections above which a warning is logged. 0 disables the check.
	MaxConnections int
}

func NewDispatcher(truster Truster, router Router, registry *Registry, cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Dispatcher{
		truster:        truster,
		router:         router,
		registry:       registry,
		maxConnections: cfg.MaxConnections,
		logger:         logger,
	}
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

func (d *Dispatcher) Dispatch(ctx context.Context, c Cycle) {
	for addr, name := range c.Names {
		d.registry.NoteName(addr, name)
	}
	for _, ev := range c.Events {
		switch ev.Kind {
		case Connected:
			d.connected(ctx, c, ev)
		case Disconnected:
			d.disconnected(c, ev)
		}
	}
}

func (d *Dispatcher) connected(ctx context.Context, c Cycle, ev Event) {
	log := d.logger.With().Str("cycle", c.ID).Str("addr", ev.Address).Logger()

	if err := d.truster.Trust(ctx, ev.Address); err != nil {
		log.Warn().Err(err).Msg("trust failed")
	} else {
		d.registry.MarkTrusted(ev.Address)
	}

	if err := d.router.RouteDevice(ctx, ev.Address); err != nil {
		log.Warn().Err(err).Msg("audio routing failed")
	}

	d.registry.MarkConnected(ev.Address, ev.ObservedAt)
	log.Info().Str("name", c.Names[ev.Address]).Msg("device connected")

	if d.maxConnections > 0 && c.Current.Len() > d.maxConnections {
		log.Warn().
			Int("connected", c.Current.Len()).
			Int("max_connections", d.maxConnections).
			Msg("more devices connected than max_connections")
	}
}

func (d *Dispatcher) disconnected(c Cycle, ev Event) {
	d.registry.MarkDisconnected(ev.Address)
	d.logger.Info().Str("cycle", c.ID).Str("addr", ev.Address).Msg("device disconnected")
}
