package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mil-ad/btspeaker/internal/bluetooth"
	"github.com/mil-ad/btspeaker/internal/command"
)

func TestSequencer_RunsInOrderAndStopsAtFailure(t *testing.T) {
	var ran []string
	step := func(name string, err error) StepFunc {
		return func(context.Context) error {
			ran = append(ran, name)
			return err
		}
	}
	boom := errors.New("boom")

	seq := NewSequencer(zerolog.Nop()).
		Add("prerequisites", step("prerequisites", nil)).
		Add("adapter", step("adapter", boom)).
		Add("audio", step("audio", nil))

	err := seq.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "adapter", stepErr.Step)
	assert.Equal(t, []string{"prerequisites", "adapter"}, ran)
	assert.Equal(t, []string{"prerequisites", "adapter", "audio"}, seq.Steps())
}

func TestSequencer_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := false
	seq := NewSequencer(zerolog.Nop()).
		Add("first", func(context.Context) error { cancel(); return nil }).
		Add("second", func(context.Context) error { called = true; return nil })

	err := seq.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestPrereqs(t *testing.T) {
	lookPath := func(have ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, h := range have {
				if h == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		}
	}
	procs := func(names ...string) ProcessLister {
		return func(context.Context) ([]string, error) { return names, nil }
	}
	base := DefaultPrereqs()

	tests := []struct {
		name    string
		p       Prereqs
		wantErr string
	}{
		{
			name: "all present",
			p:    Prereqs{Tools: base.Tools, Daemons: base.Daemons, LookPath: lookPath("bluetoothctl", "pactl"), Processes: procs("systemd", "bluetoothd", "pipewire")},
		},
		{
			name:    "missing tool",
			p:       Prereqs{Tools: base.Tools, Daemons: base.Daemons, LookPath: lookPath("pactl"), Processes: procs("bluetoothd", "pipewire")},
			wantErr: "bluetoothctl not found",
		},
		{
			name:    "no audio server",
			p:       Prereqs{Tools: base.Tools, Daemons: base.Daemons, LookPath: lookPath("bluetoothctl", "pactl"), Processes: procs("bluetoothd")},
			wantErr: "pipewire or pulseaudio not running",
		},
		{
			name: "process table unreadable",
			p: Prereqs{Tools: base.Tools, Daemons: base.Daemons, LookPath: lookPath("bluetoothctl", "pactl"),
				Processes: func(context.Context) ([]string, error) { return nil, errors.New("EPERM") }},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.CheckStep(zerolog.Nop())(context.Background())
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrToolUnavailable)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigureAdapter(t *testing.T) {
	ctrl := gomock.NewController(t)
	bt := bluetooth.NewMockController(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		bt.EXPECT().SetPowered(ctx, true).Return(nil),
		bt.EXPECT().SetAlias(ctx, "Ubuntu-Speaker").Return(nil),
	)
	require.NoError(t, ConfigureAdapter(bt, "Ubuntu-Speaker")(ctx))

	bt.EXPECT().SetPowered(ctx, true).Return(command.ErrCommandFailed)
	assert.ErrorIs(t, ConfigureAdapter(bt, "Ubuntu-Speaker")(ctx), command.ErrCommandFailed)
}

func TestClearPairings_ContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	bt := bluetooth.NewMockController(ctrl)
	ctx := context.Background()

	bt.EXPECT().ListPaired(ctx).Return([]bluetooth.Device{{Address: "AA:BB:CC:DD:EE:FF"}, {Address: "11:22:33:44:55:66"}}, nil)
	bt.EXPECT().Remove(ctx, "AA:BB:CC:DD:EE:FF").Return(command.ErrTimeout)
	bt.EXPECT().Remove(ctx, "11:22:33:44:55:66").Return(nil)

	require.NoError(t, ClearPairings(bt, zerolog.Nop())(ctx))
}

func TestEnterPairingModeAndReconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	bt := bluetooth.NewMockController(ctrl)
	ctx := context.Background()

	bt.EXPECT().SetDiscoverable(ctx, true).Return(nil)
	bt.EXPECT().SetPairable(ctx, true).Return(nil)
	require.NoError(t, EnterPairingMode(bt)(ctx))

	bt.EXPECT().ListPaired(ctx).Return([]bluetooth.Device{{Address: "AA:BB:CC:DD:EE:FF"}}, nil)
	bt.EXPECT().Connect(ctx, "AA:BB:CC:DD:EE:FF").Return(command.ErrTimeout)
	require.NoError(t, ReconnectPaired(bt, zerolog.Nop())(ctx))
}

type fakeAudio struct {
	setupErr error
	tornDown int
}

func (f *fakeAudio) Setup(context.Context) error { return f.setupErr }
func (f *fakeAudio) Teardown(context.Context)    { f.tornDown++ }

func TestTeardown_BestEffort(t *testing.T) {
	ctrl := gomock.NewController(t)
	bt := bluetooth.NewMockController(ctrl)
	ctx := context.Background()

	bt.EXPECT().SetDiscoverable(ctx, false).Return(command.ErrCommandFailed)
	bt.EXPECT().SetPairable(ctx, false).Return(command.ErrCommandFailed)
	audio := &fakeAudio{}

	Teardown(ctx, bt, audio, zerolog.Nop())
	assert.Equal(t, 1, audio.tornDown)
}

func TestConfigureAudio(t *testing.T) {
	audio := &fakeAudio{setupErr: errors.New("pactl: connection refused")}
	assert.Error(t, ConfigureAudio(audio)(context.Background()))
}
