// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mil-ad/btspeaker/internal/command"
)

// Response is what the fake returns for one command line.
type Response struct {
	Stdout string
	Err    error
}

// Fake answers commands by their String() form. Unknown commands succeed
// with empty output unless Strict is set.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []command.Cmd
	Strict    bool
}

func NewFake() *Fake {
	return &Fake{responses: make(map[string][]Response)}
}

// On queues a response for line. Multiple responses for the same line are
// returned in order; the last one repeats.
func (f *Fake) On(line string, stdout string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = append(f.responses[line], Response{Stdout: stdout, Err: err})
	return f
}

func (f *Fake) Run(_ context.Context, c command.Cmd) (command.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)

	line := c.String()
	queue, ok := f.responses[line]
	if !ok || len(queue) == 0 {
		if f.Strict {
			return command.Result{}, fmt.Errorf("commandtest: unexpected command %q", line)
		}
		return command.Result{}, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[line] = queue[1:]
	}
	return command.Result{Stdout: resp.Stdout}, resp.Err
}

// Calls returns a copy of every command seen so far.
func (f *Fake) Calls() []command.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Cmd, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the String() form of every command seen so far.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Count reports how many times line was run.
func (f *Fake) Count(line string) int {
	n := 0
	for _, l := range f.Lines() {
		if l == line {
			n++
		}
	}
	return n
}
