package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAgentDisconnected means the interactive session ended unexpectedly.
// The Worker restarts it after a backoff.
var ErrAgentDisconnected = errors.New("agent session disconnected")

const (
	DefaultIdleTimeout    = 10 * time.Second
	DefaultRestartBackoff = 2 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
)

type Config struct {
	Policy Policy
	// Aggressive also accepts unrecognised yes/no questions.
	Aggressive     bool
	IdleTimeout    time.Duration
	RestartBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c *Config) setDefaults() {
	if c.Policy == "" {
		c.Policy = PolicyAutoAccept
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.RestartBackoff <= 0 {
		c.RestartBackoff = DefaultRestartBackoff
	}
	if c.MaxBackoff < c.RestartBackoff {
		c.MaxBackoff = max(DefaultMaxBackoff, c.RestartBackoff)
	}
}

// Status is a point-in-time view of the worker.
type Status struct {
	State     string `json:"state"`
	Policy    string `json:"policy"`
	SessionID string `json:"session_id,omitempty"`
	Restarts  int    `json:"restarts"`
	Answered  int    `json:"answered"`
}

const (
	stateIdle       = "idle"
	stateRunning    = "running"
	stateRestarting = "restarting"
	stateStopped    = "stopped"
)

// Worker keeps one agent session alive and answers its prompts. It shares
// nothing with the connection monitor.
type Worker struct {
	start     StartFunc
	responder Responder
	cfg       Config
	logger    zerolog.Logger

	mu     sync.Mutex
	status Status
}

func NewWorker(start StartFunc, responder Responder, cfg Config, logger zerolog.Logger) *Worker {
	cfg.setDefaults()
	return &Worker{
		start:     start,
		responder: responder,
		cfg:       cfg,
		logger:    logger,
		status:    Status{State: stateIdle, Policy: string(cfg.Policy)},
	}
}

func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *Worker) update(fn func(*Status)) {
	w.mu.Lock()
	fn(&w.status)
	w.mu.Unlock()
}

// Run keeps a session open until ctx is cancelled, restarting it with
// exponential backoff whenever it fails. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	defer w.update(func(s *Status) { s.State = stateStopped; s.SessionID = "" })

	backoff := w.cfg.RestartBackoff
	for ctx.Err() == nil {
		answered, err := w.session(ctx)
		if ctx.Err() != nil {
			break
		}
		if answered > 0 {
			backoff = w.cfg.RestartBackoff
		}
		w.logger.Warn().Err(err).Dur("backoff", backoff).Msg("pairing agent lost, restarting")
		w.update(func(s *Status) { s.State = stateRestarting; s.SessionID = ""; s.Restarts++ })

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, w.cfg.MaxBackoff)
	}
	w.logger.Info().Msg("pairing agent stopped")
	return nil
}

func (w *Worker) session(ctx context.Context) (answered int, err error) {
	id := uuid.NewString()
	log := w.logger.With().Str("session", id).Logger()

	sess, err := w.start(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrAgentDisconnected, err)
	}
	defer sess.Close()

	for _, cmd := range []string{"agent " + w.cfg.Policy.Capability(), "default-agent"} {
		if err := sess.Send(cmd); err != nil {
			return 0, err
		}
	}
	w.update(func(s *Status) { s.State = stateRunning; s.SessionID = id })
	log.Info().Str("policy", string(w.cfg.Policy)).Str("capability", w.cfg.Policy.Capability()).
		Msg("pairing agent started")

	idle := time.NewTimer(w.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return answered, ctx.Err()
		case <-idle.C:
			log.Debug().Msg("no agent output, still waiting")
			idle.Reset(w.cfg.IdleTimeout)
			continue
		case line, ok := <-sess.Lines():
			if !ok {
				return answered, ErrAgentDisconnected
			}
			sent, err := w.handle(ctx, log, sess, line)
			if err != nil {
				return answered, err
			}
			if sent {
				answered++
			}
		}
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(w.cfg.IdleTimeout)
	}
}

// handle answers line if it is a prompt. It reports whether an answer
// was sent.
func (w *Worker) handle(ctx context.Context, log zerolog.Logger, sess Session, line string) (bool, error) {
	kind := Classify(line, w.cfg.Aggressive)
	if kind == PromptNone {
		logControlLine(log, line)
		return false, nil
	}

	p := Prompt{Kind: kind, Text: line}
	answer, err := w.responder.Respond(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		log.Warn().Err(err).Str("prompt", line).Msg("no answer for pairing prompt, refusing")
		answer, _ = rejectResponder{}.Respond(ctx, p)
	}
	if err := sess.Send(answer); err != nil {
		return false, err
	}
	w.update(func(s *Status) { s.Answered++ })
	log.Info().Str("kind", kind.String()).Bool("accepted", answer != "no" && answer != "").
		Msg("answered pairing prompt")
	return true, nil
}

func logControlLine(log zerolog.Logger, line string) {
	switch {
	case strings.Contains(line, "Agent registered"),
		strings.Contains(line, "Default agent request successful"):
		log.Debug().Str("line", line).Msg("agent registration")
	case strings.Contains(line, "Failed to register agent"),
		strings.Contains(line, "No agent is registered"):
		log.Warn().Str("line", line).Msg("agent registration failed")
	default:
		log.Trace().Str("line", line).Msg("agent output")
	}
}
