package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mil-ad/btspeaker/internal/agent"
	"github.com/mil-ad/btspeaker/internal/config"
)

func TestParseOptions(t *testing.T) {
	o, err := parseOptions(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, options{mode: modePairing}, o)

	o, err = parseOptions([]string{"--mode", "player", "--policy=fixed-pin", "-c", "/tmp/x.toml", "--backend", "dbus", "--force"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, options{mode: modePlayer, policy: "fixed-pin", configPath: "/tmp/x.toml", backend: "dbus", force: true}, o)
}

func TestParseOptions_Invalid(t *testing.T) {
	for _, args := range [][]string{
		{"--mode", "speaker"},
		{"--policy", "polite"},
		{"--backend", "hcitool"},
		{"extra"},
		{"--nope"},
	} {
		_, err := parseOptions(args, io.Discard)
		assert.Error(t, err, "%v", args)
	}
}

func TestResolvePolicy(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, agent.PolicyAutoAccept, resolvePolicy("", cfg))
	assert.Equal(t, agent.PolicyInteractive, resolvePolicy("interactive", cfg))

	cfg.Bluetooth.AutoAcceptPairing = false
	assert.Equal(t, agent.PolicyFixedPIN, resolvePolicy("", cfg))
}
