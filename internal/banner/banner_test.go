package banner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mil-ad/btspeaker/internal/agent"
	"github.com/mil-ad/btspeaker/internal/bluetooth"
	"github.com/mil-ad/btspeaker/internal/ipc"
	"github.com/mil-ad/btspeaker/internal/monitor"
)

func TestRenderReady(t *testing.T) {
	out := RenderReady(Ready{
		DeviceName:   "Ubuntu-Speaker",
		Mode:         "pairing",
		Policy:       "fixed-pin",
		PIN:          "0000",
		Adapter:      bluetooth.AdapterState{Powered: true, Discoverable: true, Pairable: true},
		AudioBackend: "pulseaudio",
	})
	assert.Contains(t, out, "Ubuntu-Speaker")
	assert.Contains(t, out, "PIN 0000")
	assert.Contains(t, out, "pulseaudio")

	out = RenderReady(Ready{DeviceName: "x", Mode: "pairing", Policy: "auto-accept"})
	assert.Contains(t, out, "powered off")
}

func TestRenderStatus(t *testing.T) {
	out := RenderStatus(ipc.Status{
		Mode:         "player",
		Adapter:      bluetooth.AdapterState{Alias: "Ubuntu-Speaker", Powered: true},
		AudioBackend: "pipewire",
		Devices: []monitor.DeviceRecord{
			{Address: "AA:BB:CC:DD:EE:FF", DisplayName: "Pixel 7", Trusted: true, Connected: true},
		},
		Agent:     &agent.Status{State: "running", Policy: "auto-accept", Answered: 1},
		LastError: "command timed out",
	})
	assert.Contains(t, out, "AA:BB:CC:DD:EE:FF")
	assert.Contains(t, out, "Pixel 7")
	assert.Contains(t, out, "1 answered")
	assert.Contains(t, out, "command timed out")

	assert.Contains(t, RenderStatus(ipc.Status{Mode: "pairing"}), "none seen yet")
}
