package bluetooth

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mil-ad/btspeaker/internal/command"
)

const testAdapter = dbus.ObjectPath("/org/bluez/hci0")

func TestDeviceObjectPath(t *testing.T) {
	assert.Equal(t,
		dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF"),
		deviceObjectPath(testAdapter, "aa:bb:cc:dd:ee:ff"))
}

func TestMacFromPath(t *testing.T) {
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", macFromPath(testAdapter, "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF"))
	assert.Equal(t, "", macFromPath(testAdapter, "/org/bluez/hci1/dev_AA_BB_CC_DD_EE_FF"))
	assert.Equal(t, "", macFromPath(testAdapter, "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF/sep1"))
	assert.Equal(t, "", macFromPath(testAdapter, "/org/bluez/hci0"))
}

func TestDevicesWithFlag(t *testing.T) {
	objs := managedObjects{
		"/org/bluez/hci0": {
			adapterIface: {"Powered": dbus.MakeVariant(true)},
		},
		"/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF": {
			deviceIface: {
				"Address":   dbus.MakeVariant("AA:BB:CC:DD:EE:FF"),
				"Alias":     dbus.MakeVariant("Pixel 7"),
				"Connected": dbus.MakeVariant(true),
				"Paired":    dbus.MakeVariant(true),
			},
		},
		"/org/bluez/hci0/dev_11_22_33_44_55_66": {
			deviceIface: {
				"Name":      dbus.MakeVariant("Tablet"),
				"Connected": dbus.MakeVariant(false),
				"Paired":    dbus.MakeVariant(true),
			},
		},
		"/org/bluez/hci1/dev_99_99_99_99_99_99": {
			deviceIface: {"Connected": dbus.MakeVariant(true)},
		},
	}

	connected := devicesWithFlag(testAdapter, objs, "Connected")
	assert.Equal(t, []Device{{Address: "AA:BB:CC:DD:EE:FF", Name: "Pixel 7"}}, connected)

	paired := devicesWithFlag(testAdapter, objs, "Paired")
	assert.Equal(t, []Device{
		{Address: "11:22:33:44:55:66", Name: "Tablet"},
		{Address: "AA:BB:CC:DD:EE:FF", Name: "Pixel 7"},
	}, paired)
}

func TestAdapterFromProps(t *testing.T) {
	st := adapterFromProps(map[string]dbus.Variant{
		"Alias":        dbus.MakeVariant("Ubuntu-Speaker"),
		"Powered":      dbus.MakeVariant(true),
		"Discoverable": dbus.MakeVariant(false),
	})
	assert.Equal(t, AdapterState{Alias: "Ubuntu-Speaker", Powered: true}, st)
}

func TestIsConnectedChange(t *testing.T) {
	sig := &dbus.Signal{
		Name: propsSignal,
		Path: "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF",
		Body: []any{deviceIface, map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)}, []string{}},
	}
	assert.True(t, isConnectedChange(sig))

	sig.Body = []any{deviceIface, map[string]dbus.Variant{"RSSI": dbus.MakeVariant(int16(-50))}, []string{}}
	assert.False(t, isConnectedChange(sig))

	sig.Body = []any{adapterIface, map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)}, []string{}}
	assert.False(t, isConnectedChange(sig))

	assert.False(t, isConnectedChange(nil))
}

func TestDBusController_CallCtx(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	b := &DBusController{adapterPath: testAdapter, timeout: 3 * time.Second}
	start := time.Now()
	ctx, done := b.callCtx(parent)
	defer done()

	assert.NoError(t, ctx.Err(), "shutdown must not abort a call in flight")
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, start.Add(3*time.Second), deadline, time.Second)

	b.timeout = 0
	ctx2, done2 := b.callCtx(context.Background())
	defer done2()
	deadline, ok = ctx2.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(command.DefaultTimeout), deadline, time.Second)
}
