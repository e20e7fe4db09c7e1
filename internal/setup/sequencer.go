// Package setup brings the adapter and audio server into speaker mode in a
// fixed order and undoes the visible parts on shutdown.
package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrToolUnavailable means a required tool or daemon is missing. It is the
// only error that aborts the process.
var ErrToolUnavailable = errors.New("required tool unavailable")

type StepFunc func(ctx context.Context) error

type Step struct {
	Name string
	Run  StepFunc
}

// StepError names the step that stopped the sequence.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("setup step %q: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Sequencer runs steps strictly in order and stops at the first failure.
// Completed steps are not rolled back.
type Sequencer struct {
	steps  []Step
	logger zerolog.Logger
}

func NewSequencer(logger zerolog.Logger) *Sequencer {
	return &Sequencer{logger: logger}
}

func (s *Sequencer) Add(name string, fn StepFunc) *Sequencer {
	s.steps = append(s.steps, Step{Name: name, Run: fn})
	return s
}

func (s *Sequencer) Steps() []string {
	names := make([]string, len(s.steps))
	for i, st := range s.steps {
		names[i] = st.Name
	}
	return names
}

func (s *Sequencer) Run(ctx context.Context) error {
	for i, st := range s.steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: st.Name, Err: err}
		}
		start := time.Now()
		s.logger.Info().Str("step", st.Name).Int("n", i+1).Int("of", len(s.steps)).Msg("setup step")
		if err := st.Run(ctx); err != nil {
			s.logger.Error().Err(err).Str("step", st.Name).Msg("setup step failed")
			return &StepError{Step: st.Name, Err: err}
		}
		s.logger.Debug().Str("step", st.Name).Dur("took", time.Since(start)).Msg("setup step done")
	}
	return nil
}
