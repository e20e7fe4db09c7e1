package monitor

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSnapshot(r *rand.Rand, pool []string) Snapshot {
	s := NewSnapshot()
	for _, a := range pool {
		if r.IntN(2) == 0 {
			s[a] = struct{}{}
		}
	}
	return s
}

func TestDiff_SetDifference(t *testing.T) {
	pool := make([]string, 8)
	for i := range pool {
		pool[i] = fmt.Sprintf("AA:BB:CC:DD:EE:%02X", i)
	}
	r := rand.New(rand.NewPCG(1, 2))
	at := time.Unix(1700000000, 0)

	for range 200 {
		a, b := randomSnapshot(r, pool), randomSnapshot(r, pool)
		events := Diff(a, b, at)

		got := map[string]Kind{}
		for _, ev := range events {
			_, dup := got[ev.Address]
			require.False(t, dup, "one event per address")
			got[ev.Address] = ev.Kind
			assert.Equal(t, at, ev.ObservedAt)
		}
		for _, addr := range pool {
			switch {
			case b.Has(addr) && !a.Has(addr):
				assert.Equal(t, Connected, got[addr], addr)
			case a.Has(addr) && !b.Has(addr):
				assert.Equal(t, Disconnected, got[addr], addr)
			default:
				assert.NotContains(t, got, addr)
			}
		}

		assert.Empty(t, Diff(a, a, at))
		assert.Equal(t, events, Diff(a, b, at))
	}
}

func TestDiff_Scenarios(t *testing.T) {
	at := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		prev Snapshot
		cur  Snapshot
		want []Event
	}{
		{
			name: "new device",
			prev: NewSnapshot(),
			cur:  NewSnapshot("AA:BB"),
			want: []Event{{Address: "AA:BB", Kind: Connected, ObservedAt: at}},
		},
		{
			name: "unchanged",
			prev: NewSnapshot("AA:BB"),
			cur:  NewSnapshot("AA:BB"),
		},
		{
			name: "one of two leaves",
			prev: NewSnapshot("AA:BB", "CC:DD"),
			cur:  NewSnapshot("CC:DD"),
			want: []Event{{Address: "AA:BB", Kind: Disconnected, ObservedAt: at}},
		},
		{
			name: "swap",
			prev: NewSnapshot("AA:BB"),
			cur:  NewSnapshot("CC:DD"),
			want: []Event{
				{Address: "CC:DD", Kind: Connected, ObservedAt: at},
				{Address: "AA:BB", Kind: Disconnected, ObservedAt: at},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.prev, tt.cur, at))
		})
	}
}

func TestSnapshot(t *testing.T) {
	s := NewSnapshot("CC:DD", "AA:BB", "", "AA:BB")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("AA:BB"))
	assert.False(t, s.Has(""))
	assert.Equal(t, []string{"AA:BB", "CC:DD"}, s.Addresses())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "disconnected", Disconnected.String())
}
