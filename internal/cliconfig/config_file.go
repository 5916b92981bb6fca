package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to make TOML friendly.
type fileConfig struct {
	CountThreshold int          `toml:"count_threshold"`
	TimeThreshold  string       `toml:"time_threshold"`
	PollInterval   string       `toml:"poll_interval"`
	RebootInterval string       `toml:"reboot_interval"`
	RadioPort      string       `toml:"radio_port"`
	TargetNodeID   string       `toml:"target_node_id"`
	TargetChannel  *int         `toml:"target_channel"`
	LogLevel       string       `toml:"log_level"`
	FlatScale      float64      `toml:"flat_scale"`
	Fields         []FieldEntry `toml:"fields"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.sondebridge/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".sondebridge", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("count-threshold", fc.CountThreshold, &cfg.CountThreshold)

	if err := s.setDuration("time-threshold", fc.TimeThreshold, &cfg.TimeThreshold); err != nil {
		return err
	}
	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("reboot-interval", fc.RebootInterval, &cfg.RebootInterval); err != nil {
		return err
	}

	s.setString("radio-port", fc.RadioPort, &cfg.RadioPort)
	s.setString("target-node", fc.TargetNodeID, &cfg.TargetNodeID)
	s.setIntPtr("target-channel", fc.TargetChannel, &cfg.TargetChannel)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setFloat("flat-scale", fc.FlatScale, &cfg.FlatScale)
	if len(fc.Fields) > 0 {
		cfg.Fields = fc.Fields
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
