// Package config loads btspeaker's TOML configuration file, writing the
// defaults out on first run, and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	BackendBluetoothctl = "bluetoothctl"
	BackendDBus         = "dbus"
)

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Bluetooth Bluetooth `toml:"bluetooth"`
	Audio     Audio     `toml:"audio"`
	Routing   Routing   `toml:"routing"`
	Logging   Logging   `toml:"logging"`
	Monitor   Monitor   `toml:"monitor"`
	Agent     Agent     `toml:"agent"`
	IPC       IPC       `toml:"ipc"`
}

type Bluetooth struct {
	DeviceName        string `toml:"device_name"`
	DeviceClass       string `toml:"device_class"`
	AutoAcceptPairing bool   `toml:"auto_accept_pairing"`
	PairingPIN        string `toml:"pairing_pin"`
	MaxConnections    int    `toml:"max_connections"`
	Backend           string `toml:"backend"`
	Adapter           string `toml:"adapter"`
}

// Audio settings are advisory. They are logged at startup; codec and
// buffer handling belong to the audio server.
type Audio struct {
	SampleRate      int    `toml:"sample_rate"`
	BufferSize      int    `toml:"buffer_size"`
	AudioFormat     string `toml:"audio_format"`
	AdaptiveBitrate bool   `toml:"adaptive_bitrate"`
}

type Routing struct {
	AutoRouteToSpeakers bool   `toml:"auto_route_to_speakers"`
	EnableLoopback      bool   `toml:"enable_loopback"`
	DefaultSink         string `toml:"default_sink"`
}

type Logging struct {
	LogLevel      string `toml:"log_level"`
	LogFile       string `toml:"log_file"`
	ConsoleOutput bool   `toml:"console_output"`
}

type Monitor struct {
	PollInterval   Duration `toml:"poll_interval"`
	CommandTimeout Duration `toml:"command_timeout"`
}

type Agent struct {
	IdleTimeout    Duration `toml:"idle_timeout"`
	RestartBackoff Duration `toml:"restart_backoff"`
	MaxBackoff     Duration `toml:"max_backoff"`
}

type IPC struct {
	// Socket path; empty means $XDG_RUNTIME_DIR/btspeaker.sock.
	Socket string `toml:"socket"`
}

// defaultFile is written verbatim when no configuration exists.
const defaultFile = `# btspeaker configuration

[bluetooth]
device_name = "Ubuntu-Speaker"
device_class = "0x200414"
auto_accept_pairing = true
pairing_pin = "0000"
max_connections = 1
# bluetoothctl or dbus
backend = "bluetoothctl"
adapter = "hci0"

[audio]
sample_rate = 44100
buffer_size = 1024
audio_format = "16bit"
adaptive_bitrate = true

[routing]
auto_route_to_speakers = true
enable_loopback = true
# "auto" picks the first analog ALSA output
default_sink = "auto"

[logging]
log_level = "INFO"
log_file = "/tmp/bluetooth_speaker.log"
console_output = true

[monitor]
poll_interval = "5s"
command_timeout = "10s"

[agent]
idle_timeout = "10s"
restart_backoff = "2s"
max_backoff = "30s"

[ipc]
socket = ""
`

func Default() Config {
	var c Config
	if err := toml.Unmarshal([]byte(defaultFile), &c); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return c
}

// Path returns the default config location.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "btspeaker", "config.toml")
}

// SocketPath resolves the IPC socket location.
func (c Config) SocketPath() string {
	if c.IPC.Socket != "" {
		return c.IPC.Socket
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, "btspeaker.sock")
}

// Load reads path, writing the defaults there first if it does not exist.
// Keys missing from the file keep their default values. Environment
// overrides, including those from a .env file next to path, are applied
// last. created reports whether the defaults were written.
func Load(path string) (cfg Config, created bool, err error) {
	return load(path, true)
}

// LoadReadOnly is Load without the first-run write: a missing file yields
// the defaults and nothing is created on disk.
func LoadReadOnly(path string) (Config, error) {
	cfg, _, err := load(path, false)
	return cfg, err
}

func load(path string, write bool) (cfg Config, created bool, err error) {
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if write {
			if err := writeDefaults(path); err != nil {
				return Config{}, false, err
			}
			created = true
		}
		data = []byte(defaultFile)
	} else if err != nil {
		return Config{}, false, fmt.Errorf("read config: %w", err)
	}

	cfg = Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, created, fmt.Errorf("parse config %s: %w", path, err)
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, created, fmt.Errorf("load %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, created, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, created, err
	}
	return cfg, created, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultFile), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BTSPEAKER_LOG_LEVEL"); v != "" {
		c.Logging.LogLevel = v
	}
	if v := os.Getenv("BTSPEAKER_POLL_INTERVAL"); v != "" {
		if err := c.Monitor.PollInterval.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("BTSPEAKER_POLL_INTERVAL: %w", err)
		}
	}
	if v := os.Getenv("BTSPEAKER_PAIRING_PIN"); v != "" {
		c.Bluetooth.PairingPIN = v
	}
	if v := os.Getenv("BTSPEAKER_BACKEND"); v != "" {
		c.Bluetooth.Backend = v
	}
	return nil
}

var pinRe = regexp.MustCompile(`^[0-9]{1,16}$`)

func (c Config) Validate() error {
	var errs []error
	if c.Monitor.PollInterval <= 0 {
		errs = append(errs, errors.New("monitor.poll_interval must be positive"))
	}
	if c.Monitor.CommandTimeout <= 0 {
		errs = append(errs, errors.New("monitor.command_timeout must be positive"))
	}
	if !pinRe.MatchString(c.Bluetooth.PairingPIN) {
		errs = append(errs, errors.New("bluetooth.pairing_pin must be 1-16 digits"))
	}
	switch c.Bluetooth.Backend {
	case BackendBluetoothctl, BackendDBus:
	default:
		errs = append(errs, fmt.Errorf("bluetooth.backend %q is not one of bluetoothctl, dbus", c.Bluetooth.Backend))
	}
	if strings.TrimSpace(c.Bluetooth.DeviceName) == "" {
		errs = append(errs, errors.New("bluetooth.device_name must not be empty"))
	}
	if c.Bluetooth.MaxConnections < 0 {
		errs = append(errs, errors.New("bluetooth.max_connections must not be negative"))
	}
	if strings.TrimSpace(c.Routing.DefaultSink) == "" {
		errs = append(errs, errors.New("routing.default_sink must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
