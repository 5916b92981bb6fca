// Package cliconfig loads the bridge configuration from, in order of
// increasing precedence: the built-in defaults, a TOML config file,
// SONDEBRIDGE_* environment variables, and command-line flags.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sonde-labs/sondebridge/internal/registry"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// FieldEntry declares one registry field in the config file.
type FieldEntry struct {
	Name  string  `toml:"name"`
	Key   int64   `toml:"key"`
	Scale float64 `toml:"scale"`
}

// Config holds the bridge configuration.
type Config struct {
	// CountThreshold is the number of buffered records that fires a window.
	CountThreshold int

	// TimeThreshold is the maximum age of an open window before it fires.
	TimeThreshold time.Duration

	// PollInterval is the scheduler timer granularity.
	PollInterval time.Duration

	// RebootInterval enables the periodic radio reboot task when positive.
	RebootInterval time.Duration

	// RadioPort is the serial port of the radio device (external transport).
	RadioPort string

	// TargetNodeID addresses frames to one node; empty means channel broadcast.
	TargetNodeID string

	// TargetChannel is the broadcast channel index.
	TargetChannel int

	// LogLevel is the zerolog level name.
	LogLevel string

	// Fields is the extended per-field registry table. Empty means the
	// built-in radiosonde table.
	Fields []FieldEntry

	// FlatScale, when positive, selects the legacy flat registry: the
	// built-in key table with this one scale applied to every field.
	FlatScale float64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		CountThreshold: 10,
		TimeThreshold:  15 * time.Second,
		PollInterval:   100 * time.Millisecond,
		RebootInterval: time.Hour,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.CountThreshold <= 0 {
		return fmt.Errorf("%w: count-threshold must be positive", telemetry.ErrInvalidConfig)
	}
	if c.TimeThreshold <= 0 {
		return fmt.Errorf("%w: time-threshold must be positive", telemetry.ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", telemetry.ErrInvalidConfig)
	}
	if c.RebootInterval < 0 {
		return fmt.Errorf("%w: reboot interval must not be negative", telemetry.ErrInvalidConfig)
	}
	if len(c.Fields) > 0 && c.FlatScale > 0 {
		return fmt.Errorf("%w: fields table and flat_scale are mutually exclusive", telemetry.ErrInvalidConfig)
	}
	if _, err := c.BuildRegistry(); err != nil {
		return err
	}
	return nil
}

// BuildRegistry constructs the active field registry: the per-field table
// from the config file when present, the legacy flat form when FlatScale
// is set, and the built-in radiosonde table otherwise.
func (c *Config) BuildRegistry() (*registry.Registry, error) {
	if len(c.Fields) > 0 {
		fields := make([]registry.Descriptor, len(c.Fields))
		for i, fe := range c.Fields {
			scale := fe.Scale
			if scale == 0 {
				scale = 1
			}
			fields[i] = registry.Descriptor{Name: fe.Name, Key: fe.Key, Scale: scale}
		}
		return registry.New(fields)
	}
	if c.FlatScale > 0 {
		keys := make(map[string]int64)
		for _, d := range registry.Default().Descriptors() {
			keys[d.Name] = d.Key
		}
		return registry.Flat(keys, c.FlatScale)
	}
	return registry.Default(), nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value from a pointer if not nil and flag not changed.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}
