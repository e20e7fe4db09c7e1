// Package command runs the external tools btspeaker drives (bluetoothctl,
// pactl) and reports their output and exit status.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single invocation when neither the Cmd nor the
// runner specifies one.
const DefaultTimeout = 10 * time.Second

var (
	ErrCommandFailed = errors.New("command failed")
	ErrTimeout       = errors.New("command timed out")
)

// Cmd describes one invocation. Stdin, if set, is written to the process
// and the pipe closed, which is how bluetoothctl accepts scripted input.
type Cmd struct {
	Name    string
	Args    []string
	Stdin   string
	Timeout time.Duration
}

// New is shorthand for a Cmd without stdin.
func New(name string, args ...string) Cmd {
	return Cmd{Name: name, Args: args}
}

func (c Cmd) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Error is returned for non-zero exits and timeouts. It matches
// ErrCommandFailed or ErrTimeout with errors.Is.
type Error struct {
	Cmd      string
	ExitCode int
	Stderr   string
	kind     error
	err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Cmd, e.kind)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// Runner executes a Cmd. Implementations must not let cancellation of ctx
// kill a process that already started; only the per-call timeout does.
type Runner interface {
	Run(ctx context.Context, c Cmd) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Timeout time.Duration
}

func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, c Cmd) (Result, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Shutdown stops new work; an in-flight call runs to completion or timeout.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.ExitCode = -1
		return res, &Error{Cmd: c.String(), ExitCode: -1, Stderr: res.Stderr, kind: ErrTimeout, err: err}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}
	return res, &Error{Cmd: c.String(), ExitCode: res.ExitCode, Stderr: res.Stderr, kind: ErrCommandFailed, err: err}
}

// LookPath reports whether name resolves to an executable on PATH.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
