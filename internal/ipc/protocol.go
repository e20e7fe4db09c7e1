// Package ipc exposes a running btspeaker's state on a unix socket, one
// JSON request and one JSON response per connection.
package ipc

import (
	"time"

	"github.com/mil-ad/btspeaker/internal/agent"
	"github.com/mil-ad/btspeaker/internal/bluetooth"
	"github.com/mil-ad/btspeaker/internal/monitor"
)

const (
	CommandStatus = "status"
	CommandPing   = "ping"
)

// Request is sent from the status client to the running instance.
type Request struct {
	Command string `json:"command"` // "status" | "ping"
}

// Response is sent back. Exactly one of Status and Error is set for a
// status request; ping answers with neither.
type Response struct {
	Status *Status `json:"status,omitempty"`
	Error  string  `json:"error,omitempty"`
}

type Status struct {
	Mode         string                 `json:"mode"`
	Policy       string                 `json:"policy,omitempty"`
	StartedAt    time.Time              `json:"started_at"`
	Adapter      bluetooth.AdapterState `json:"adapter"`
	AudioBackend string                 `json:"audio_backend"`
	Connected    []string               `json:"connected"`
	Devices      []monitor.DeviceRecord `json:"devices"`
	Agent        *agent.Status          `json:"agent,omitempty"`
	Cycles       uint64                 `json:"cycles"`
	LastSample   time.Time              `json:"last_sample,omitzero"`
	LastError    string                 `json:"last_error,omitempty"`
}
