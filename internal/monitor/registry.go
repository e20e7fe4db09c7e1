package monitor

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// DeviceRecord is what btspeaker has observed about one peer during this
// run. Address is the only identity; DisplayName is advisory.
type DeviceRecord struct {
	Address           string    `json:"address"`
	DisplayName       string    `json:"display_name,omitempty"`
	Trusted           bool      `json:"trusted"`
	Connected         bool      `json:"connected"`
	PairedAt          time.Time `json:"paired_at,omitzero"`
	LastSeenConnected time.Time `json:"last_seen_connected,omitzero"`
}

// Registry is an in-memory DeviceRecord store. Nothing is persisted; the
// Bluetooth daemon owns durable pairing state.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*DeviceRecord
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*DeviceRecord)}
}

func (r *Registry) record(addr string) *DeviceRecord {
	rec, ok := r.records[addr]
	if !ok {
		rec = &DeviceRecord{Address: addr}
		r.records[addr] = rec
	}
	return rec
}

// NoteName updates the display name. Empty names are ignored.
func (r *Registry) NoteName(addr, name string) {
	addr = strings.TrimSpace(addr)
	name = strings.TrimSpace(name)
	if addr == "" || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(addr).DisplayName = name
}

func (r *Registry) MarkConnected(addr string, at time.Time) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(addr)
	rec.Connected = true
	if rec.PairedAt.IsZero() {
		rec.PairedAt = at
	}
	rec.LastSeenConnected = at
}

func (r *Registry) MarkDisconnected(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(addr).Connected = false
}

func (r *Registry) MarkTrusted(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(addr).Trusted = true
}

func (r *Registry) Get(addr string) (DeviceRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[addr]
	if !ok {
		return DeviceRecord{}, false
	}
	return *rec, true
}

// List returns copies of all records sorted by address.
func (r *Registry) List() []DeviceRecord {
	r.mu.RLock()
	out := make([]DeviceRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b DeviceRecord) int { return strings.Compare(a.Address, b.Address) })
	return out
}
