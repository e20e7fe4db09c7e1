package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultInterval = 5 * time.Second

type Config struct {
	Interval time.Duration
}

// Monitor owns the previous snapshot and runs the sample, diff, dispatch
// cycle. Cycles never overlap.
type Monitor struct {
	sampler    Sampler
	dispatcher *Dispatcher
	interval   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
	wake       <-chan struct{}

	mu         sync.Mutex
	prev       Snapshot
	seeded     bool
	cycles     uint64
	lastSample time.Time
	lastErr    error
}

func New(sampler Sampler, dispatcher *Dispatcher, cfg Config, logger zerolog.Logger) *Monitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		sampler:    sampler,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		prev:       NewSnapshot(),
	}
}

// SetWake registers a channel that triggers an extra cycle between ticks,
// such as a D-Bus PropertiesChanged watch. Must be called before Run.
func (m *Monitor) SetWake(ch <-chan struct{}) {
	m.wake = ch
}

// Run performs a cycle immediately and then one per interval until ctx is
// cancelled. A cycle in progress is allowed to finish.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().Dur("interval", m.interval).Msg("connection monitor started")

	m.Cycle(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	wake := m.wake
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("connection monitor stopped")
			return nil
		case <-ticker.C:
		case _, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
		}
		if ctx.Err() != nil {
			continue
		}
		m.Cycle(ctx)
	}
}

// Cycle samples once, diffs against the previous snapshot and dispatches
// the resulting events. The first successful sample only seeds state. A
// failed sample is treated as no change.
func (m *Monitor) Cycle(ctx context.Context) []Event {
	id := uuid.NewString()
	devs, err := m.sampler.ListConnected(ctx)
	at := m.now()

	m.mu.Lock()
	m.cycles++
	m.lastSample = at
	m.lastErr = err
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn().Err(err).Str("cycle", id).Msg("sampling connected devices failed, keeping previous snapshot")
		return nil
	}

	cur := NewSnapshot()
	names := make(map[string]string, len(devs))
	for _, d := range devs {
		cur[d.Address] = struct{}{}
		if d.Name != "" {
			names[d.Address] = d.Name
		}
	}

	prev, seeded := m.prev, m.seeded
	m.prev, m.seeded = cur, true
	m.mu.Unlock()

	if !seeded {
		m.logger.Info().Str("cycle", id).Strs("connected", cur.Addresses()).Msg("initial connection state")
		m.dispatcher.Dispatch(ctx, Cycle{ID: id, Current: cur, Names: names})
		return nil
	}

	events := Diff(prev, cur, at)
	if len(events) > 0 {
		m.logger.Debug().Str("cycle", id).Int("events", len(events)).Msg("connection state changed")
	}
	m.dispatcher.Dispatch(ctx, Cycle{ID: id, Events: events, Current: cur, Names: names})
	return events
}

// Status is a point-in-time view of the monitor.
type Status struct {
	Connected  []string
	Cycles     uint64
	LastSample time.Time
	LastError  string
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{
		Connected:  m.prev.Addresses(),
		Cycles:     m.cycles,
		LastSample: m.lastSample,
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
	}
	return st
}
