package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Policy decides how pairing prompts are answered.
type Policy string

const (
	PolicyAutoAccept  Policy = "auto-accept"
	PolicyFixedPIN    Policy = "fixed-pin"
	PolicyInteractive Policy = "interactive"
	PolicyReject      Policy = "reject"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAutoAccept, PolicyFixedPIN, PolicyInteractive, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown pairing policy %q (want auto-accept, fixed-pin, interactive or reject)", s)
	}
}

// Capability is the IO capability registered with `agent <capability>`.
// NoInputNoOutput lets most phones pair with "just works" and no PIN.
func (p Policy) Capability() string {
	switch p {
	case PolicyAutoAccept, PolicyReject:
		return "NoInputNoOutput"
	default:
		return "KeyboardDisplay"
	}
}

// Responder produces the line sent back for a prompt.
type Responder interface {
	Respond(ctx context.Context, p Prompt) (string, error)
}

// NewResponder builds the Responder for policy. in and out are only used
// by the interactive policy.
func NewResponder(policy Policy, pin string, in io.Reader, out io.Writer) Responder {
	switch policy {
	case PolicyReject:
		return rejectResponder{}
	case PolicyInteractive:
		return newInteractiveResponder(in, out)
	default:
		return acceptResponder{pin: pin}
	}
}

type acceptResponder struct {
	pin string
}

func (r acceptResponder) Respond(_ context.Context, p Prompt) (string, error) {
	switch p.Kind {
	case PromptPasskey, PromptPIN:
		return r.pin, nil
	default:
		return "yes", nil
	}
}

type rejectResponder struct{}

func (rejectResponder) Respond(_ context.Context, p Prompt) (string, error) {
	switch p.Kind {
	case PromptPasskey, PromptPIN:
		return "", nil
	default:
		return "no", nil
	}
}

// interactiveResponder shows each prompt to the operator and reads the
// answer from in. A single goroutine owns in, so a cancelled prompt does
// not lose the next answer.
type interactiveResponder struct {
	out   io.Writer
	in    io.Reader
	once  sync.Once
	lines chan string
}

func newInteractiveResponder(in io.Reader, out io.Writer) *interactiveResponder {
	return &interactiveResponder{in: in, out: out, lines: make(chan string)}
}

func (r *interactiveResponder) read() {
	sc := bufio.NewScanner(r.in)
	for sc.Scan() {
		r.lines <- strings.TrimSpace(sc.Text())
	}
	close(r.lines)
}

func (r *interactiveResponder) Respond(ctx context.Context, p Prompt) (string, error) {
	r.once.Do(func() { go r.read() })

	switch p.Kind {
	case PromptPasskey, PromptPIN:
		fmt.Fprintf(r.out, "pairing request: %s\nenter %s (empty to refuse): ", p.Text, p.Kind)
	default:
		fmt.Fprintf(r.out, "pairing request: %s\naccept? [yes/no]: ", p.Text)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case answer, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if p.Kind == PromptPasskey || p.Kind == PromptPIN {
			return answer, nil
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return "yes", nil
		default:
			return "no", nil
		}
	}
}
