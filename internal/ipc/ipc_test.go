package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mil-ad/btspeaker/internal/agent"
	"github.com/mil-ad/btspeaker/internal/bluetooth"
	"github.com/mil-ad/btspeaker/internal/monitor"
)

func startServer(t *testing.T, status StatusFunc) (string, context.CancelFunc) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "btspeaker.sock")
	srv, err := Listen(path, status, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return path, cancel
}

func TestStatusRoundTrip(t *testing.T) {
	want := Status{
		Mode:         "pairing",
		Policy:       "auto-accept",
		Adapter:      bluetooth.AdapterState{Alias: "Ubuntu-Speaker", Powered: true, Discoverable: true, Pairable: true},
		AudioBackend: "pipewire",
		Connected:    []string{"AA:BB:CC:DD:EE:FF"},
		Devices:      []monitor.DeviceRecord{{Address: "AA:BB:CC:DD:EE:FF", DisplayName: "Pixel 7", Trusted: true, Connected: true}},
		Agent:        &agent.Status{State: "running", Policy: "auto-accept", Answered: 2},
		Cycles:       7,
	}
	path, _ := startServer(t, func(context.Context) Status { return want })

	got, err := FetchStatus(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0o077, "socket is owner-only")
}

func TestUnknownCommandAndPing(t *testing.T) {
	path, _ := startServer(t, func(context.Context) Status { return Status{} })

	resp, err := Call(context.Background(), path, Request{Command: "toggle"})
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "unknown command")

	resp, err = Call(context.Background(), path, Request{Command: CommandPing})
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Nil(t, resp.Status)
}

func TestListen_RefusesLiveSocket(t *testing.T) {
	path, _ := startServer(t, func(context.Context) Status { return Status{} })

	_, err := Listen(path, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())
	fi, err := os.Lstat(path)
	require.NoError(t, err)
	require.NotZero(t, fi.Mode()&os.ModeSocket)

	srv, err := Listen(path, func(context.Context) Status { return Status{} }, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, srv.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestListen_KeepsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o600))

	_, err := Listen(path, func(context.Context) Status { return Status{} }, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a socket")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestFetchStatus_NoServer(t *testing.T) {
	_, err := FetchStatus(context.Background(), filepath.Join(t.TempDir(), "missing.sock"))
	assert.Error(t, err)
}
