// Package bluetooth adapts the local Bluetooth stack to the narrow set of
// operations btspeaker needs: listing connected and paired peers, setting
// adapter flags, and granting trust. Two implementations exist: one drives
// bluetoothctl and parses its text output, the other talks to BlueZ over
// the system D-Bus.
package bluetooth

//go:generate mockgen -destination=mock_controller.go -package=bluetooth github.com/mil-ad/btspeaker/internal/bluetooth Controller

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Device is a peer as reported by the Bluetooth stack. Address is the only
// identity; Name is advisory and may be empty or stale.
type Device struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// AdapterState mirrors the flags shown by `bluetoothctl show`.
type AdapterState struct {
	Alias        string `json:"alias,omitempty"`
	Powered      bool   `json:"powered"`
	Discoverable bool   `json:"discoverable"`
	Pairable     bool   `json:"pairable"`
}

// Controller is the Bluetooth control collaborator.
type Controller interface {
	ListConnected(ctx context.Context) ([]Device, error)
	ListPaired(ctx context.Context) ([]Device, error)
	Adapter(ctx context.Context) (AdapterState, error)

	SetPowered(ctx context.Context, on bool) error
	SetDiscoverable(ctx context.Context, on bool) error
	SetPairable(ctx context.Context, on bool) error
	SetAlias(ctx context.Context, alias string) error

	Trust(ctx context.Context, addr string) error
	Remove(ctx context.Context, addr string) error
	Connect(ctx context.Context, addr string) error

	Close() error
}

var addrRe = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$`)

// NormalizeAddress upper-cases a MAC-style address and validates its shape.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !addrRe.MatchString(addr) {
		return "", fmt.Errorf("invalid bluetooth address %q", addr)
	}
	return strings.ToUpper(addr), nil
}

// Addresses returns the address of each device, in order.
func Addresses(devs []Device) []string {
	out := make([]string, 0, len(devs))
	for _, d := range devs {
		out = append(out, d.Address)
	}
	return out
}
