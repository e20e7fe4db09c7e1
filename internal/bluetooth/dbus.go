package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/mil-ad/btspeaker/internal/command"
)

const (
	busName         = "org.bluez"
	adapterIface    = "org.bluez.Adapter1"
	deviceIface     = "org.bluez.Device1"
	propsIface      = "org.freedesktop.DBus.Properties"
	objManagerIface = "org.freedesktop.DBus.ObjectManager"
	propsSignal     = "org.freedesktop.DBus.Properties.PropertiesChanged"
)

// ErrBlueZUnavailable is returned when org.bluez is not on the system bus.
var ErrBlueZUnavailable = errors.New("org.bluez not found on system bus, is bluetooth.service running?")

type managedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// deviceObjectPath converts a MAC address like "AA:BB:CC:DD:EE:FF" to
// "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF".
func deviceObjectPath(adapterPath dbus.ObjectPath, addr string) dbus.ObjectPath {
	escaped := strings.ReplaceAll(strings.ToUpper(addr), ":", "_")
	return dbus.ObjectPath(string(adapterPath) + "/dev_" + escaped)
}

// macFromPath extracts a MAC address from a BlueZ device object path under
// adapterPath, or returns "" for any other path.
func macFromPath(adapterPath, path dbus.ObjectPath) string {
	s := string(path)
	prefix := string(adapterPath) + "/dev_"
	if !strings.HasPrefix(s, prefix) {
		return ""
	}
	rest := s[len(prefix):]
	if strings.Contains(rest, "/") {
		return ""
	}
	return strings.ReplaceAll(rest, "_", ":")
}

// DBusController talks to BlueZ directly over the system bus.
type DBusController struct {
	conn        *dbus.Conn
	adapterPath dbus.ObjectPath
	timeout     time.Duration
}

// NewDBusController connects to the system bus and checks that BlueZ is
// present. adapter is the HCI name, e.g. "hci0". timeout bounds each
// method call; zero means command.DefaultTimeout.
func NewDBusController(adapter string, timeout time.Duration) (*DBusController, error) {
	if adapter == "" {
		adapter = "hci0"
	}
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		conn.Close()
		return nil, fmt.Errorf("list bus names: %w", err)
	}
	if !slices.Contains(names, busName) {
		conn.Close()
		return nil, ErrBlueZUnavailable
	}
	return &DBusController{conn: conn, adapterPath: dbus.ObjectPath("/org/bluez/" + adapter), timeout: timeout}, nil
}

// callCtx bounds one bus call. Like command.ExecRunner, a call already in
// flight is not aborted by shutdown; it finishes or times out.
func (b *DBusController) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := b.timeout
	if timeout <= 0 {
		timeout = command.DefaultTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (b *DBusController) Close() error {
	return b.conn.Close()
}

// --- property helpers ---

func (b *DBusController) getAll(ctx context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()
	obj := b.conn.Object(busName, path)
	var props map[string]dbus.Variant
	err := obj.CallWithContext(ctx, propsIface+".GetAll", 0, iface).Store(&props)
	return props, err
}

func (b *DBusController) setProp(ctx context.Context, path dbus.ObjectPath, iface, prop string, val any) error {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()
	obj := b.conn.Object(busName, path)
	return obj.CallWithContext(ctx, propsIface+".Set", 0, iface, prop, dbus.MakeVariant(val)).Err
}

// --- adapter ---

func (b *DBusController) Adapter(ctx context.Context) (AdapterState, error) {
	props, err := b.getAll(ctx, b.adapterPath, adapterIface)
	if err != nil {
		return AdapterState{}, fmt.Errorf("adapter properties: %w", err)
	}
	return adapterFromProps(props), nil
}

func (b *DBusController) SetPowered(ctx context.Context, on bool) error {
	return b.setProp(ctx, b.adapterPath, adapterIface, "Powered", on)
}

func (b *DBusController) SetDiscoverable(ctx context.Context, on bool) error {
	return b.setProp(ctx, b.adapterPath, adapterIface, "Discoverable", on)
}

func (b *DBusController) SetPairable(ctx context.Context, on bool) error {
	return b.setProp(ctx, b.adapterPath, adapterIface, "Pairable", on)
}

func (b *DBusController) SetAlias(ctx context.Context, alias string) error {
	return b.setProp(ctx, b.adapterPath, adapterIface, "Alias", alias)
}

// --- devices ---

func (b *DBusController) managedObjects(ctx context.Context) (managedObjects, error) {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()
	var objs managedObjects
	call := b.conn.Object(busName, "/").CallWithContext(ctx, objManagerIface+".GetManagedObjects", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetManagedObjects: %w", call.Err)
	}
	if err := call.Store(&objs); err != nil {
		return nil, fmt.Errorf("decode GetManagedObjects: %w", err)
	}
	return objs, nil
}

func (b *DBusController) ListConnected(ctx context.Context) ([]Device, error) {
	objs, err := b.managedObjects(ctx)
	if err != nil {
		return nil, err
	}
	return devicesWithFlag(b.adapterPath, objs, "Connected"), nil
}

func (b *DBusController) ListPaired(ctx context.Context) ([]Device, error) {
	objs, err := b.managedObjects(ctx)
	if err != nil {
		return nil, err
	}
	return devicesWithFlag(b.adapterPath, objs, "Paired"), nil
}

func (b *DBusController) Trust(ctx context.Context, addr string) error {
	addr, err := NormalizeAddress(addr)
	if err != nil {
		return err
	}
	return b.setProp(ctx, deviceObjectPath(b.adapterPath, addr), deviceIface, "Trusted", true)
}

func (b *DBusController) Remove(ctx context.Context, addr string) error {
	addr, err := NormalizeAddress(addr)
	if err != nil {
		return err
	}
	ctx, cancel := b.callCtx(ctx)
	defer cancel()
	obj := b.conn.Object(busName, b.adapterPath)
	return obj.CallWithContext(ctx, adapterIface+".RemoveDevice", 0, deviceObjectPath(b.adapterPath, addr)).Err
}

func (b *DBusController) Connect(ctx context.Context, addr string) error {
	addr, err := NormalizeAddress(addr)
	if err != nil {
		return err
	}
	ctx, cancel := b.callCtx(ctx)
	defer cancel()
	obj := b.conn.Object(busName, deviceObjectPath(b.adapterPath, addr))
	return obj.CallWithContext(ctx, deviceIface+".Connect", 0).Err
}

// --- signal subscription ---

// WatchConnections emits on the returned channel whenever a device's
// Connected property flips. Bursts are coalesced; the channel is closed
// when ctx is done.
func (b *DBusController) WatchConnections(ctx context.Context) (<-chan struct{}, error) {
	if err := b.conn.AddMatchSignal(
		dbus.WithMatchInterface(propsIface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchPathNamespace(b.adapterPath),
	); err != nil {
		return nil, fmt.Errorf("AddMatchSignal: %w", err)
	}
	sigCh := make(chan *dbus.Signal, 16)
	b.conn.Signal(sigCh)

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer b.conn.RemoveSignal(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-sigCh:
				if !ok {
					return
				}
				if !isConnectedChange(sig) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func isConnectedChange(sig *dbus.Signal) bool {
	if sig == nil || sig.Name != propsSignal || len(sig.Body) < 2 {
		return false
	}
	// Body: [interface_name string, changed_props map[string]Variant, invalidated []string]
	iface, ok := sig.Body[0].(string)
	if !ok || iface != deviceIface {
		return false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return false
	}
	_, ok = changed["Connected"]
	return ok
}

func adapterFromProps(props map[string]dbus.Variant) AdapterState {
	var st AdapterState
	st.Alias, _ = props["Alias"].Value().(string)
	st.Powered, _ = props["Powered"].Value().(bool)
	st.Discoverable, _ = props["Discoverable"].Value().(bool)
	st.Pairable, _ = props["Pairable"].Value().(bool)
	return st
}

// devicesWithFlag returns the Device1 objects under adapterPath whose
// boolean property flag is true.
func devicesWithFlag(adapterPath dbus.ObjectPath, objs managedObjects, flag string) []Device {
	var out []Device
	for path, ifaces := range objs {
		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		mac := macFromPath(adapterPath, path)
		if mac == "" {
			continue
		}
		set, _ := props[flag].Value().(bool)
		if !set {
			continue
		}
		if v, ok := props["Address"]; ok {
			if a, ok := v.Value().(string); ok && a != "" {
				mac = a
			}
		}
		addr, err := NormalizeAddress(mac)
		if err != nil {
			continue
		}
		d := Device{Address: addr}
		if v, ok := props["Alias"]; ok {
			d.Name, _ = v.Value().(string)
		}
		if v, ok := props["Name"]; ok && d.Name == "" {
			d.Name, _ = v.Value().(string)
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Device) int { return strings.Compare(a.Address, b.Address) })
	return out
}
