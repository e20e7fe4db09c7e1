// Package banner renders the human-facing summaries printed to the
// terminal: the "ready" banner after setup and the status view.
package banner

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mil-ad/btspeaker/internal/bluetooth"
	"github.com/mil-ad/btspeaker/internal/ipc"
)

const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaRed        = "#FF5555"
	draculaComment    = "#6272A4"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPink)).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan)).Width(14)
	valStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground))
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen))
	offStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaOrange))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaCyan)).
			Padding(0, 1)
)

// Ready describes a speaker that finished setup.
type Ready struct {
	DeviceName   string
	Mode         string
	Policy       string
	PIN          string
	Adapter      bluetooth.AdapterState
	AudioBackend string
}

func row(key, val string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(key), val)
}

func flag(on bool) string {
	if on {
		return onStyle.Render("on")
	}
	return offStyle.Render("off")
}

func adapterRows(st bluetooth.AdapterState) []string {
	return []string{
		row("powered", flag(st.Powered)),
		row("discoverable", flag(st.Discoverable)),
		row("pairable", flag(st.Pairable)),
	}
}

func RenderReady(r Ready) string {
	lines := []string{
		titleStyle.Render("Bluetooth speaker ready"),
		"",
		row("name", valStyle.Render(r.DeviceName)),
		row("mode", valStyle.Render(r.Mode)),
	}
	if r.Policy != "" {
		lines = append(lines, row("pairing", valStyle.Render(r.Policy)))
	}
	lines = append(lines, adapterRows(r.Adapter)...)
	lines = append(lines, row("audio", valStyle.Render(r.AudioBackend)), "")

	switch {
	case !r.Adapter.Powered:
		lines = append(lines, warnStyle.Render("adapter is powered off, check `rfkill list`"))
	case r.Mode == "player":
		lines = append(lines, hintStyle.Render("reconnecting paired devices; play audio from your phone"))
	case r.Policy == "fixed-pin" || r.Policy == "interactive":
		lines = append(lines, hintStyle.Render(fmt.Sprintf("pair with %q from your phone; PIN %s", r.DeviceName, r.PIN)))
	default:
		lines = append(lines, hintStyle.Render(fmt.Sprintf("pair with %q from your phone; no PIN needed", r.DeviceName)))
	}
	lines = append(lines, hintStyle.Render("press Ctrl-C to stop"))

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func RenderStatus(st ipc.Status) string {
	lines := []string{
		titleStyle.Render("btspeaker " + st.Mode),
		"",
	}
	if !st.StartedAt.IsZero() {
		lines = append(lines, row("up", valStyle.Render(time.Since(st.StartedAt).Truncate(time.Second).String())))
	}
	if st.Adapter.Alias != "" {
		lines = append(lines, row("name", valStyle.Render(st.Adapter.Alias)))
	}
	lines = append(lines, adapterRows(st.Adapter)...)
	lines = append(lines, row("audio", valStyle.Render(st.AudioBackend)))
	if st.Agent != nil {
		lines = append(lines, row("agent", valStyle.Render(fmt.Sprintf("%s (%s, %d answered, %d restarts)",
			st.Agent.State, st.Agent.Policy, st.Agent.Answered, st.Agent.Restarts))))
	}
	lines = append(lines, row("cycles", valStyle.Render(fmt.Sprint(st.Cycles))))
	if st.LastError != "" {
		lines = append(lines, row("last error", warnStyle.Render(st.LastError)))
	}

	lines = append(lines, "", titleStyle.Render("devices"))
	if len(st.Devices) == 0 {
		lines = append(lines, hintStyle.Render("none seen yet"))
	}
	for _, d := range st.Devices {
		name := d.DisplayName
		if name == "" {
			name = "-"
		}
		state := offStyle.Render("disconnected")
		if d.Connected {
			state = onStyle.Render("connected")
		}
		trust := ""
		if d.Trusted {
			trust = hintStyle.Render(" trusted")
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s%s", valStyle.Render(d.Address), name, state, trust))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}
