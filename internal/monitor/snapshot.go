// Package monitor tracks which Bluetooth devices are connected by sampling
// the controller on an interval, diffing consecutive snapshots and
// dispatching one reaction per transition.
package monitor

import (
	"slices"
	"time"
)

// Snapshot is the set of device addresses believed connected at one
// polling instant. Treat it as immutable once built.
type Snapshot map[string]struct{}

func NewSnapshot(addrs ...string) Snapshot {
	s := make(Snapshot, len(addrs))
	for _, a := range addrs {
		if a != "" {
			s[a] = struct{}{}
		}
	}
	return s
}

func (s Snapshot) Has(addr string) bool {
	_, ok := s[addr]
	return ok
}

func (s Snapshot) Len() int { return len(s) }

// Addresses returns the members in sorted order.
func (s Snapshot) Addresses() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

type Kind int

const (
	Connected Kind = iota + 1
	Disconnected
)

func (k Kind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is one connection transition derived from two snapshots.
type Event struct {
	Address    string
	Kind       Kind
	ObservedAt time.Time
}

// Diff returns one Connected event per address in cur but not prev and one
// Disconnected event per address in prev but not cur. Events are sorted by
// kind, then address, so equal inputs always give equal output.
func Diff(prev, cur Snapshot, at time.Time) []Event {
	var events []Event
	for _, a := range cur.Addresses() {
		if !prev.Has(a) {
			events = append(events, Event{Address: a, Kind: Connected, ObservedAt: at})
		}
	}
	for _, a := range prev.Addresses() {
		if !cur.Has(a) {
			events = append(events, Event{Address: a, Kind: Disconnected, ObservedAt: at})
		}
	}
	return events
}
