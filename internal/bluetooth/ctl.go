package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mil-ad/btspeaker/internal/command"
)

const (
	ctlBinary      = "bluetoothctl"
	connectTimeout = 20 * time.Second
)

// failureMarkers are printed by bluetoothctl on stdout while it still exits 0.
var failureMarkers = []string{
	"Failed to ",
	"not available",
	"No default controller available",
	"org.bluez.Error.",
	"Too many arguments",
	"Invalid command",
}

// CtlController drives bluetoothctl in one-shot command mode.
type CtlController struct {
	runner command.Runner
	logger zerolog.Logger
}

func NewCtlController(runner command.Runner, logger zerolog.Logger) *CtlController {
	return &CtlController{runner: runner, logger: logger}
}

func (c *CtlController) run(ctx context.Context, args ...string) (string, error) {
	return c.runCmd(ctx, command.New(ctlBinary, args...))
}

func (c *CtlController) runCmd(ctx context.Context, cmd command.Cmd) (string, error) {
	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return res.Stdout, err
	}
	for _, marker := range failureMarkers {
		if strings.Contains(res.Stdout, marker) {
			return res.Stdout, fmt.Errorf("%s: %w: %s", cmd, command.ErrCommandFailed, firstLineWith(res.Stdout, marker))
		}
	}
	return res.Stdout, nil
}

func (c *CtlController) listDevices(ctx context.Context, args ...string) ([]Device, error) {
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	devs, skipped := ParseDevices(out)
	if skipped > 0 {
		c.logger.Debug().Int("skipped", skipped).Str("cmd", strings.Join(args, " ")).Msg("skipped unparseable lines")
	}
	return devs, nil
}

// ListConnected uses the "devices Connected" filter (BlueZ 5.65+) and falls
// back to querying each known device with "info" on older versions.
func (c *CtlController) ListConnected(ctx context.Context) ([]Device, error) {
	devs, err := c.listDevices(ctx, "devices", "Connected")
	if err == nil {
		return devs, nil
	}
	if errors.Is(err, command.ErrTimeout) {
		return nil, err
	}
	c.logger.Debug().Err(err).Msg("devices Connected unsupported, falling back to info")

	all, err := c.listDevices(ctx, "devices")
	if err != nil {
		return nil, err
	}
	var connected []Device
	for _, d := range all {
		out, err := c.run(ctx, "info", d.Address)
		if err != nil {
			c.logger.Warn().Err(err).Str("addr", d.Address).Msg("device info failed")
			continue
		}
		info := ParseInfo(out)
		if !info.Connected {
			continue
		}
		if d.Name == "" {
			d.Name = info.Name
		}
		connected = append(connected, d)
	}
	return connected, nil
}

func (c *CtlController) ListPaired(ctx context.Context) ([]Device, error) {
	devs, err := c.listDevices(ctx, "devices", "Paired")
	if err == nil {
		return devs, nil
	}
	if errors.Is(err, command.ErrTimeout) {
		return nil, err
	}
	return c.listDevices(ctx, "paired-devices")
}

func (c *CtlController) Adapter(ctx context.Context) (AdapterState, error) {
	out, err := c.run(ctx, "show")
	if err != nil {
		return AdapterState{}, err
	}
	return ParseAdapter(out), nil
}

func (c *CtlController) SetPowered(ctx context.Context, on bool) error {
	_, err := c.run(ctx, "power", onOff(on))
	return err
}

func (c *CtlController) SetDiscoverable(ctx context.Context, on bool) error {
	_, err := c.run(ctx, "discoverable", onOff(on))
	return err
}

func (c *CtlController) SetPairable(ctx context.Context, on bool) error {
	_, err := c.run(ctx, "pairable", onOff(on))
	return err
}

func (c *CtlController) SetAlias(ctx context.Context, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return errors.New("alias is required")
	}
	_, err := c.run(ctx, "system-alias", alias)
	return err
}

func (c *CtlController) Trust(ctx context.Context, addr string) error {
	return c.deviceVerb(ctx, "trust", addr, 0)
}

func (c *CtlController) Remove(ctx context.Context, addr string) error {
	return c.deviceVerb(ctx, "remove", addr, 0)
}

func (c *CtlController) Connect(ctx context.Context, addr string) error {
	return c.deviceVerb(ctx, "connect", addr, connectTimeout)
}

func (c *CtlController) deviceVerb(ctx context.Context, verb, addr string, timeout time.Duration) error {
	addr, err := NormalizeAddress(addr)
	if err != nil {
		return err
	}
	cmd := command.New(ctlBinary, verb, addr)
	cmd.Timeout = timeout
	_, err = c.runCmd(ctx, cmd)
	return err
}

func (c *CtlController) Close() error { return nil }

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func firstLineWith(out, marker string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, marker) {
			return CleanLine(line)
		}
	}
	return ""
}
