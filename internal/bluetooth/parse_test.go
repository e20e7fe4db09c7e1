package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevices(t *testing.T) {
	out := "Device AA:BB:CC:DD:EE:FF Pixel 7\n" +
		"Device 11:22:33:44:55:66\n" +
		"\n" +
		"Waiting to connect to bluetoothd...\n" +
		"Device not-a-mac Broken\n" +
		"\x1b[0;94m[bluetooth]\x1b[0m# Device a1:b2:c3:d4:e5:f6 Living Room\r\n"

	devs, skipped := ParseDevices(out)

	require.Len(t, devs, 3)
	assert.Equal(t, Device{Address: "AA:BB:CC:DD:EE:FF", Name: "Pixel 7"}, devs[0])
	assert.Equal(t, Device{Address: "11:22:33:44:55:66"}, devs[1])
	assert.Equal(t, Device{Address: "A1:B2:C3:D4:E5:F6", Name: "Living Room"}, devs[2])
	assert.Equal(t, 2, skipped)
}

func TestParseDevices_DuplicateAddressReportedOnce(t *testing.T) {
	devs, _ := ParseDevices("Device AA:BB:CC:DD:EE:FF Phone\nDevice aa:bb:cc:dd:ee:ff Phone (renamed)\n")

	require.Len(t, devs, 1)
	assert.Equal(t, "Phone", devs[0].Name)
}

func TestParseDevices_Empty(t *testing.T) {
	devs, skipped := ParseDevices("")
	assert.Empty(t, devs)
	assert.Zero(t, skipped)
}

func TestParseAdapter(t *testing.T) {
	out := `Controller 00:1A:7D:DA:71:13 (public)
	Name: laptop
	Alias: Ubuntu-Speaker
	Class: 0x00200414
	Powered: yes
	Discoverable: no
	DiscoverableTimeout: 0x000000b4
	Pairable: yes
	UUID: Audio Sink                (0000110b-0000-1000-8000-00805f9b34fb)
	Discovering: no
`
	st := ParseAdapter(out)
	assert.Equal(t, AdapterState{Alias: "Ubuntu-Speaker", Powered: true, Discoverable: false, Pairable: true}, st)
}

func TestParseInfo(t *testing.T) {
	out := `Device AA:BB:CC:DD:EE:FF (public)
	Name: Pixel 7
	Alias: Pixel 7
	Paired: yes
	Trusted: no
	Blocked: no
	Connected: yes
`
	info := ParseInfo(out)
	assert.Equal(t, DeviceInfo{Name: "Pixel 7", Paired: true, Trusted: false, Connected: true}, info)
}

func TestCleanLine(t *testing.T) {
	assert.Equal(t, "Request confirmation", CleanLine("[agent] Request confirmation"))
	assert.Equal(t, "Confirm passkey 123456 (yes/no):", CleanLine("\x1b[0;94m[Pixel 7]\x1b[0m> Confirm passkey 123456 (yes/no):"))
	assert.Equal(t, "", CleanLine("   \r"))
}

func TestNormalizeAddress(t *testing.T) {
	addr, err := NormalizeAddress(" aa:bb:cc:dd:ee:ff ")
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", addr)

	_, err = NormalizeAddress("AA:BB")
	assert.Error(t, err)
	_, err = NormalizeAddress("AA:BB:CC:DD:EE:FF; rm -rf /")
	assert.Error(t, err)
}
