package monitor

//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/mil-ad/btspeaker/internal/monitor Sampler,Truster,Router

import (
	"context"

	"github.com/mil-ad/btspeaker/internal/bluetooth"
)

// Sampler lists the devices currently connected to the adapter.
// bluetooth.Controller satisfies it.
type Sampler interface {
	ListConnected(ctx context.Context) ([]bluetooth.Device, error)
}

// Truster grants standing trust to a device. Trusting an already trusted
// device must succeed.
type Truster interface {
	Trust(ctx context.Context, addr string) error
}

// Router points the local audio output at a newly connected device.
type Router interface {
	RouteDevice(ctx context.Context, addr string) error
}
