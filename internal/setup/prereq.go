package setup

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/mil-ad/btspeaker/internal/command"
)

// ProcessLister returns the names of running processes.
type ProcessLister func(ctx context.Context) ([]string, error)

// RunningProcesses lists process names from /proc.
func RunningProcesses(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Prereqs describes what must be present before setup can proceed.
type Prereqs struct {
	Tools []string
	// Daemons lists groups of process names; one name per group must be
	// running.
	Daemons [][]string

	LookPath  func(string) (string, error)
	Processes ProcessLister
}

func DefaultPrereqs() Prereqs {
	return Prereqs{
		Tools:     []string{"bluetoothctl", "pactl"},
		Daemons:   [][]string{{"bluetoothd"}, {"pipewire", "pulseaudio"}},
		LookPath:  command.LookPath,
		Processes: RunningProcesses,
	}
}

// CheckStep verifies the tools and daemons. A process table that cannot be
// read is logged and not treated as missing daemons.
func (p Prereqs) CheckStep(logger zerolog.Logger) StepFunc {
	return func(ctx context.Context) error {
		var missing []string
		for _, tool := range p.Tools {
			if _, err := p.LookPath(tool); err != nil {
				missing = append(missing, tool)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s not found on PATH", ErrToolUnavailable, strings.Join(missing, ", "))
		}

		if len(p.Daemons) == 0 || p.Processes == nil {
			return nil
		}
		names, err := p.Processes(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("cannot list processes, skipping daemon check")
			return nil
		}
		for _, group := range p.Daemons {
			if !slices.ContainsFunc(group, func(d string) bool { return slices.Contains(names, d) }) {
				missing = append(missing, strings.Join(group, " or "))
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s not running", ErrToolUnavailable, strings.Join(missing, ", "))
		}
		return nil
	}
}
