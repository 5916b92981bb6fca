package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/sonde-labs/sondebridge/internal/adapters/console"
	logAdapter "github.com/sonde-labs/sondebridge/internal/adapters/log"
	"github.com/sonde-labs/sondebridge/internal/adapters/stream"
	"github.com/sonde-labs/sondebridge/internal/bridge"
	"github.com/sonde-labs/sondebridge/internal/cliconfig"
	"github.com/sonde-labs/sondebridge/internal/codec"
)

const helpDescription = `
Relay radiosonde telemetry over a bandwidth-constrained LoRa mesh link.

Records from radiosonde_auto_rx arrive as verbose JSON; sondebridge
compacts each one into a minimal CBOR frame and throttles how often a
frame is handed to the radio, trading data freshness for airtime.

Highlights:
  - Per-field fixed-point scaling keeps GPS fixes within 1e-5 degrees.
  - Count/time threshold batching sends only the latest fix per window.
  - Field table, thresholds, and intervals configure via file, env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  sondebridge --count-threshold 10 --time-threshold 15s < records.jsonl
  sondebridge decode a764736e...
  sondebridge encode '{"type":"PAYLOAD_SUMMARY","callsign":"IMET-8120B666","latitude":31.87804}'
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "sondebridge",
		Short:   "Relay radiosonde telemetry over a LoRa mesh link",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := loadConfig(cmd, &cfg, cfgPath)
			if err != nil {
				return err
			}

			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				log = log.Level(lvl)
			}
			log.Info().Interface("config", cfg).Msg("configuration")

			reg, err := cfg.BuildRegistry()
			if err != nil {
				return err
			}

			logger := logAdapter.NewZerologAdapterWithLogger(log)

			// Records come from stdin and frames go to stdout as hex lines;
			// the UDP listener and the radio driver are external processes
			// wired up by the deployment.
			b, err := bridge.New(
				bridge.Config{
					CountThreshold: cfg.CountThreshold,
					TimeThreshold:  cfg.TimeThreshold,
					PollInterval:   cfg.PollInterval,
				},
				codec.New(reg),
				stream.NewSource(os.Stdin),
				console.NewTransmitter(os.Stdout),
				bridge.WithLogger(logger),
			)
			if err != nil {
				return fmt.Errorf("create bridge: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := b.Start(ctx); err != nil {
				return fmt.Errorf("start bridge: %w", err)
			}

			// Hot-reload thresholds when the config file changes.
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				watcher := cliconfig.NewWatcher(cfgFile, logger, func(nc cliconfig.Config) {
					if err := b.SetThresholds(nc.CountThreshold, nc.TimeThreshold); err != nil {
						log.Warn().Err(err).Msg("threshold reload rejected")
					}
				})
				go func() {
					if err := watcher.Run(ctx); err != nil {
						log.Warn().Err(err).Msg("config watcher stopped")
					}
				}()
			}

			select {
			case <-sigCh:
				log.Info().Msg("received signal, stopping...")
			case <-b.Done():
				// Input exhausted; the final window is already flushed.
			}

			if err := b.Stop(); err != nil {
				return fmt.Errorf("stop bridge: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.sondebridge/config.toml)")
	root.Flags().IntVar(&cfg.CountThreshold, "count-threshold", cfg.CountThreshold, "records buffered before a frame is sent")
	root.Flags().DurationVar(&cfg.TimeThreshold, "time-threshold", cfg.TimeThreshold, "max age of a window before a frame is sent")
	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "scheduler timer granularity")
	root.Flags().DurationVar(&cfg.RebootInterval, "reboot-interval", cfg.RebootInterval, "periodic radio reboot interval (0 disables)")
	root.Flags().StringVar(&cfg.RadioPort, "radio-port", cfg.RadioPort, "serial port of the radio device")
	root.Flags().StringVar(&cfg.TargetNodeID, "target-node", cfg.TargetNodeID, "destination node ID for direct messages")
	root.Flags().IntVar(&cfg.TargetChannel, "target-channel", cfg.TargetChannel, "broadcast channel index")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")

	root.AddCommand(newEncodeCmd(&cfgPath), newDecodeCmd(&cfgPath))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("sondebridge")
		os.Exit(1)
	}
}

// loadConfig applies file and environment configuration underneath any
// explicitly set flags and validates the result. It returns the config
// file path that was consulted.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) (string, error) {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return "", err
		}
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return "", err
	}

	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return cfgFile, nil
}
