package agent

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/mil-ad/btspeaker/internal/bluetooth"
)

// Session is a live line-based conversation with the Bluetooth control
// tool. Lines is closed when the tool exits or its output ends.
type Session interface {
	Lines() <-chan string
	Send(line string) error
	Close() error
}

// StartFunc opens a new Session.
type StartFunc func(ctx context.Context) (Session, error)

const closeGrace = 2 * time.Second

type execSession struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// ExecStarter returns a StartFunc running name with args, typically
// plain "bluetoothctl". The process is not tied to ctx; Close stops it.
func ExecStarter(name string, args ...string) StartFunc {
	return func(ctx context.Context) (Session, error) {
		return startExec(ctx, name, args...)
	}
}

func startExec(_ context.Context, name string, args ...string) (*execSession, error) {
	cmd := exec.Command(name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	s := &execSession{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}
	go s.read(stdout)
	return s, nil
}

func (s *execSession) read(r io.Reader) {
	defer close(s.lines)
	sc := bufio.NewScanner(r)
	sc.Split(splitPrompts)
	for sc.Scan() {
		line := bluetooth.CleanLine(sc.Text())
		if line == "" {
			continue
		}
		select {
		case s.lines <- line:
		case <-s.done:
			return
		}
	}
}

func (s *execSession) Lines() <-chan string { return s.lines }

func (s *execSession) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrAgentDisconnected
	}
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrAgentDisconnected, err)
	}
	return nil
}

// Close asks the tool to quit, then kills it if it has not exited within
// a short grace period.
func (s *execSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	io.WriteString(s.stdin, "quit\n")
	s.stdin.Close()
	s.mu.Unlock()
	close(s.done)

	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()
	select {
	case <-exited:
		return nil
	case <-time.After(closeGrace):
		s.cmd.Process.Kill()
		<-exited
		return nil
	}
}

// splitPrompts splits on line endings, and also yields an unterminated
// agent question such as "[agent] Enter PIN code: ", which bluetoothctl
// prints without a newline while it waits for input.
func splitPrompts(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	if bytes.HasSuffix(bytes.TrimRight(data, " "), []byte(":")) &&
		Classify(bluetooth.CleanLine(string(data)), true) != PromptNone {
		return len(data), data, nil
	}
	return 0, nil, nil
}
