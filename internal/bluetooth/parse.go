package bluetooth

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	ansiRe   = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]|\x01|\x02`)
	promptRe = regexp.MustCompile(`^(\[[^\]]*\][#>]|\[agent\])\s*`)
	deviceRe = regexp.MustCompile(`^Device\s+([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})(?:\s+(.*))?$`)
)

// CleanLine strips terminal escapes and interactive prefixes such as
// "[bluetooth]# ", "[Phone]> " or "[agent] " from one line of bluetoothctl
// output. Event prefixes like "[NEW]" and "[CHG]" are kept.
func CleanLine(line string) string {
	line = strings.TrimSpace(ansiRe.ReplaceAllString(line, ""))
	for {
		stripped := promptRe.ReplaceAllString(line, "")
		if stripped == line {
			return line
		}
		line = strings.TrimSpace(stripped)
	}
}

// ParseDevices extracts "Device <addr> <name>" lines. Lines of any other
// shape are skipped; skipped reports how many non-blank lines were dropped.
// A device listed twice is reported once.
func ParseDevices(out string) (devs []Device, skipped int) {
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := CleanLine(sc.Text())
		if line == "" {
			continue
		}
		m := deviceRe.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}
		addr := strings.ToUpper(m[1])
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		devs = append(devs, Device{Address: addr, Name: strings.TrimSpace(m[2])})
	}
	return devs, skipped
}

// ParseAdapter reads the flags of interest from `bluetoothctl show`.
func ParseAdapter(out string) AdapterState {
	var st AdapterState
	for key, val := range parseFields(out) {
		switch key {
		case "Alias":
			st.Alias = val
		case "Powered":
			st.Powered = val == "yes"
		case "Discoverable":
			st.Discoverable = val == "yes"
		case "Pairable":
			st.Pairable = val == "yes"
		}
	}
	return st
}

// DeviceInfo is the subset of `bluetoothctl info <addr>` btspeaker reads.
type DeviceInfo struct {
	Name      string
	Paired    bool
	Trusted   bool
	Connected bool
}

func ParseInfo(out string) DeviceInfo {
	var info DeviceInfo
	for key, val := range parseFields(out) {
		switch key {
		case "Name":
			info.Name = val
		case "Paired":
			info.Paired = val == "yes"
		case "Trusted":
			info.Trusted = val == "yes"
		case "Connected":
			info.Connected = val == "yes"
		}
	}
	return info
}

// parseFields collects "Key: value" lines. The first occurrence of a key
// wins; later sections of `show` repeat some keys for other adapters.
func parseFields(out string) map[string]string {
	fields := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := CleanLine(sc.Text())
		key, val, ok := strings.Cut(line, ":")
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = strings.TrimSpace(val)
	}
	return fields
}
