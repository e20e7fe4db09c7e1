// Package agent answers Bluetooth pairing prompts by driving an
// interactive bluetoothctl session registered as the default agent.
package agent

import (
	"regexp"
	"strings"
)

type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptConfirmation
	PromptPasskey
	PromptPIN
	PromptAuthorization
)

func (k PromptKind) String() string {
	switch k {
	case PromptConfirmation:
		return "confirmation"
	case PromptPasskey:
		return "passkey"
	case PromptPIN:
		return "pin"
	case PromptAuthorization:
		return "authorization"
	default:
		return "none"
	}
}

// Prompt is one question bluetoothctl asked on behalf of the agent.
type Prompt struct {
	Kind PromptKind
	Text string
}

// Questions as printed by bluetoothctl's agent, after CleanLine. Each is
// preceded by an announcement such as "Request confirmation", which is
// not itself answered.
var questions = []struct {
	re   *regexp.Regexp
	kind PromptKind
}{
	{regexp.MustCompile(`(?i)^confirm passkey\b`), PromptConfirmation},
	{regexp.MustCompile(`(?i)^accept pairing\b`), PromptConfirmation},
	{regexp.MustCompile(`(?i)^enter passkey\b`), PromptPasskey},
	{regexp.MustCompile(`(?i)^enter pin code\b`), PromptPIN},
	{regexp.MustCompile(`(?i)^authorize service\b.*yes/no`), PromptAuthorization},
}

var yesNoRe = regexp.MustCompile(`[\[(]yes/no[\])]`)

// Classify reports which kind of question line is, if any. line should
// already be cleaned of prompts and escapes. With aggressive set, any
// other yes/no question also counts as a confirmation. "Request ..."
// announcements are never answered: bluetoothctl opens the input prompt
// together with the announcement, so a reply would be taken as the PIN.
func Classify(line string, aggressive bool) PromptKind {
	line = strings.TrimSpace(line)
	if line == "" {
		return PromptNone
	}
	for _, q := range questions {
		if q.re.MatchString(line) {
			return q.kind
		}
	}
	if !aggressive {
		return PromptNone
	}
	if yesNoRe.MatchString(line) {
		return PromptConfirmation
	}
	return PromptNone
}
