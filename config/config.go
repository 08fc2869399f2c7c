package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation errors
var (
	ErrNoPrimary       = errors.New("config: no primary unit")
	ErrManyPrimaries   = errors.New("config: more than one primary unit")
	ErrUnitPorts       = errors.New("config: unit needs input and output port names")
	ErrBadRole         = errors.New("config: unit role must be primary or extension")
	ErrBadStripWidth   = errors.New("config: display width must be 1-7")
	ErrBadQoS          = errors.New("config: mqtt qos must be 0, 1 or 2")
	ErrBadJog          = errors.New("config: jog snap must be in (0, 0.5)")
	ErrNonPositiveTick = errors.New("config: durations must be positive")
)

// Unit roles
const (
	RolePrimary   = "primary"
	RoleExtension = "extension"
)

// UnitConfig names the ports of one physical unit. Units are listed in desk
// order, left to right.
type UnitConfig struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// TimerConfig sets the cadence of the host tick trigger.
type TimerConfig struct {
	Tick time.Duration `yaml:"tick"`
}

// DisplayConfig controls the scribble strips.
type DisplayConfig struct {
	// Flash is how long a changed value stays on a strip, in seconds.
	Flash float64 `yaml:"flash"`
	Width int     `yaml:"width"`

	// Values and Titles add to or override the built-in localization tables.
	Values map[string]string `yaml:"values,omitempty"`
	Titles map[string]string `yaml:"titles,omitempty"`

	// RingMode is the V-Pot ring mode: single, boost/cut, wrap or spread.
	RingMode string `yaml:"ring_mode"`
}

// MeterConfig controls the channel meters.
type MeterConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// JogConfig controls the jog wheel decoder.
type JogConfig struct {
	Snap float64 `yaml:"snap"`
	Step float64 `yaml:"step"`
}

// MQTTConfig connects the host link.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
}

// LoggingConfig enables the debug log.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// ThemeConfig points at an optional GIMP palette for the monitor.
type ThemeConfig struct {
	Palette string `yaml:"palette,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Units   []UnitConfig  `yaml:"units"`
	Timer   TimerConfig   `yaml:"timer"`
	Display DisplayConfig `yaml:"display"`
	Meter   MeterConfig   `yaml:"meter"`
	Jog     JogConfig     `yaml:"jog"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
	Theme   ThemeConfig   `yaml:"theme"`
}

// Default returns a config for a single primary unit.
func Default() *Config {
	return &Config{
		Units: []UnitConfig{
			{
				Name:   "MCU",
				Role:   RolePrimary,
				Input:  "MCU",
				Output: "MCU",
			},
		},
		Timer:   TimerConfig{Tick: time.Second},
		Display: DisplayConfig{Flash: 1, Width: 7, RingMode: "single"},
		Meter:   MeterConfig{Throttle: 125 * time.Millisecond},
		Jog:     JogConfig{Snap: 0.4, Step: 1.0 / 128},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "go-mackie",
			TopicPrefix: "mackie",
			QoS:         1,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-mackie"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}

	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads a config file over the defaults, applies environment
// overrides (GOMACKIE_MQTT_BROKER, GOMACKIE_MQTT_USERNAME,
// GOMACKIE_MQTT_PASSWORD, GOMACKIE_LOG_LEVEL) and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	// A file that lists units replaces the default unit.
	cfg.Units = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if len(cfg.Units) == 0 {
		cfg.Units = Default().Units
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GOMACKIE_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
		cfg.MQTT.Enabled = true
	}
	if v := os.Getenv("GOMACKIE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("GOMACKIE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("GOMACKIE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the unit layout and value ranges.
func (c *Config) Validate() error {
	primaries := 0
	for i, u := range c.Units {
		switch strings.ToLower(u.Role) {
		case RolePrimary:
			primaries++
		case RoleExtension:
		default:
			return fmt.Errorf("%w: unit %d has %q", ErrBadRole, i, u.Role)
		}
		if u.Input == "" || u.Output == "" {
			return fmt.Errorf("%w: unit %d", ErrUnitPorts, i)
		}
	}
	if len(c.Units) > 0 && primaries == 0 {
		return ErrNoPrimary
	}
	if primaries > 1 {
		return ErrManyPrimaries
	}

	if c.Display.Width < 1 || c.Display.Width > 7 {
		return ErrBadStripWidth
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return ErrBadQoS
	}
	if c.Jog.Snap <= 0 || c.Jog.Snap >= 0.5 {
		return ErrBadJog
	}
	if c.Timer.Tick <= 0 || c.Meter.Throttle <= 0 || c.Display.Flash <= 0 || c.Jog.Step <= 0 {
		return ErrNonPositiveTick
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path.
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FindUnit finds a unit config by name
func (c *Config) FindUnit(name string) *UnitConfig {
	for i := range c.Units {
		if c.Units[i].Name == name {
			return &c.Units[i]
		}
	}
	return nil
}

// Primary returns the index of the primary unit, or -1.
func (c *Config) Primary() int {
	for i, u := range c.Units {
		if strings.EqualFold(u.Role, RolePrimary) {
			return i
		}
	}
	return -1
}
