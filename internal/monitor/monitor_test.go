package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mil-ad/btspeaker/internal/bluetooth"
	"github.com/mil-ad/btspeaker/internal/command"
)

type mocks struct {
	sampler *MockSampler
	truster *MockTruster
	router  *MockRouter
}

func newTestMonitor(t *testing.T) (*Monitor, mocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks{
		sampler: NewMockSampler(ctrl),
		truster: NewMockTruster(ctrl),
		router:  NewMockRouter(ctrl),
	}
	d := NewDispatcher(m.truster, m.router, nil, DispatcherConfig{}, zerolog.Nop())
	return New(m.sampler, d, Config{Interval: time.Hour}, zerolog.Nop()), m
}

func devices(addrs ...string) []bluetooth.Device {
	out := make([]bluetooth.Device, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, bluetooth.Device{Address: a})
	}
	return out
}

func TestMonitor_FirstSampleSeedsSilently(t *testing.T) {
	mon, m := newTestMonitor(t)
	m.sampler.EXPECT().ListConnected(gomock.Any()).Return(devices("AA:BB", "CC:DD"), nil)

	assert.Empty(t, mon.Cycle(context.Background()))
	assert.Equal(t, []string{"AA:BB", "CC:DD"}, mon.Status().Connected)
}

func TestMonitor_ScenarioA_NewConnection(t *testing.T) {
	mon, m := newTestMonitor(t)
	ctx := context.Background()
	gomock.InOrder(
		m.sampler.EXPECT().ListConnected(ctx).Return(nil, nil),
		m.sampler.EXPECT().ListConnected(ctx).Return(devices("AA:BB"), nil),
	)
	m.truster.EXPECT().Trust(ctx, "AA:BB").Return(nil).Times(1)
	m.router.EXPECT().RouteDevice(ctx, "AA:BB").Return(nil).Times(1)

	mon.Cycle(ctx)
	events := mon.Cycle(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, "AA:BB", events[0].Address)
	assert.Equal(t, Connected, events[0].Kind)
}

func TestMonitor_ScenarioB_NoChange(t *testing.T) {
	mon, m := newTestMonitor(t)
	m.sampler.EXPECT().ListConnected(gomock.Any()).Return(devices("AA:BB"), nil).Times(2)

	mon.Cycle(context.Background())
	assert.Empty(t, mon.Cycle(context.Background()))
}

func TestMonitor_ScenarioC_Disconnect(t *testing.T) {
	mon, m := newTestMonitor(t)
	gomock.InOrder(
		m.sampler.EXPECT().ListConnected(gomock.Any()).Return(devices("AA:BB", "CC:DD"), nil),
		m.sampler.EXPECT().ListConnected(gomock.Any()).Return(devices("CC:DD"), nil),
	)

	mon.Cycle(context.Background())
	events := mon.Cycle(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, Event{Address: "AA:BB", Kind: Disconnected, ObservedAt: events[0].ObservedAt}, events[0])
}

func TestMonitor_ScenarioD_SamplerTimeout(t *testing.T) {
	mon, m := newTestMonitor(t)
	ctx := context.Background()
	gomock.InOrder(
		m.sampler.EXPECT().ListConnected(ctx).Return(devices("AA:BB"), nil),
		m.sampler.EXPECT().ListConnected(ctx).Return(nil, command.ErrTimeout),
		m.sampler.EXPECT().ListConnected(ctx).Return(devices("AA:BB"), nil),
		m.sampler.EXPECT().ListConnected(ctx).Return(nil, nil),
	)

	mon.Cycle(ctx)

	assert.Empty(t, mon.Cycle(ctx), "a failed sample reports no change")
	st := mon.Status()
	assert.Equal(t, []string{"AA:BB"}, st.Connected)
	assert.Contains(t, st.LastError, "timed out")

	assert.Empty(t, mon.Cycle(ctx))
	assert.Empty(t, mon.Status().LastError)

	events := mon.Cycle(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, Disconnected, events[0].Kind)
	assert.Equal(t, uint64(4), mon.Status().Cycles)
}

func TestMonitor_FailedFirstSampleDoesNotSeed(t *testing.T) {
	mon, m := newTestMonitor(t)
	gomock.InOrder(
		m.sampler.EXPECT().ListConnected(gomock.Any()).Return(nil, command.ErrCommandFailed),
		m.sampler.EXPECT().ListConnected(gomock.Any()).Return(devices("AA:BB"), nil),
	)

	assert.Empty(t, mon.Cycle(context.Background()))
	assert.Empty(t, mon.Cycle(context.Background()), "first successful sample seeds")
}

func TestMonitor_RunWakesAndStops(t *testing.T) {
	mon, m := newTestMonitor(t)
	m.sampler.EXPECT().ListConnected(gomock.Any()).Return(devices("AA:BB"), nil).MinTimes(2)

	wake := make(chan struct{}, 1)
	mon.SetWake(wake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	require.Eventually(t, func() bool { return mon.Status().Cycles >= 1 }, time.Second, 5*time.Millisecond)
	wake <- struct{}{}
	require.Eventually(t, func() bool { return mon.Status().Cycles >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
