package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (SONDEBRIDGE_*). It respects flags that have been explicitly set
// (changed map). Returns an error if any variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("count-threshold", os.Getenv("SONDEBRIDGE_COUNT_THRESHOLD"), &cfg.CountThreshold); err != nil {
		return err
	}
	if err := s.setDuration("time-threshold", os.Getenv("SONDEBRIDGE_TIME_THRESHOLD"), &cfg.TimeThreshold); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("SONDEBRIDGE_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("reboot-interval", os.Getenv("SONDEBRIDGE_REBOOT_INTERVAL"), &cfg.RebootInterval); err != nil {
		return err
	}
	if err := s.setFloatFromString("flat-scale", os.Getenv("SONDEBRIDGE_FLAT_SCALE"), &cfg.FlatScale); err != nil {
		return err
	}
	if err := s.setIntFromString("target-channel", os.Getenv("SONDEBRIDGE_TARGET_CHANNEL"), &cfg.TargetChannel); err != nil {
		return err
	}

	s.setString("radio-port", os.Getenv("SONDEBRIDGE_RADIO_PORT"), &cfg.RadioPort)
	s.setString("target-node", os.Getenv("SONDEBRIDGE_TARGET_NODE_ID"), &cfg.TargetNodeID)
	s.setString("log-level", os.Getenv("SONDEBRIDGE_LOG_LEVEL"), &cfg.LogLevel)

	return nil
}
