package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sonde-labs/sondebridge/internal/cliconfig"
	"github.com/sonde-labs/sondebridge/internal/codec"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// newEncodeCmd builds the encode diagnostic subcommand: JSON record in,
// hex frame out, with a size comparison against the compact text form.
func newEncodeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <json-record>",
		Short: "Encode a JSON telemetry record into a hex frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildCodec(cmd, cfgPath)
			if err != nil {
				return err
			}

			rec, err := telemetry.ParseRecord([]byte(args[0]))
			if err != nil {
				return err
			}

			compact := c.Encode(rec)
			frame, err := c.MarshalBinary(compact)
			if err != nil {
				return err
			}
			text, err := c.MarshalText(compact)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "frame: %x\n", frame)
			fmt.Fprintf(cmd.OutOrStdout(), "binary: %d bytes, text: %d bytes, original: %d bytes\n",
				len(frame), len(text), len(args[0]))
			return nil
		},
	}
}

// newDecodeCmd builds the decode diagnostic subcommand: hex frame in,
// JSON record out.
func newDecodeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex-frame>",
		Short: "Decode a hex frame back into a JSON telemetry record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildCodec(cmd, cfgPath)
			if err != nil {
				return err
			}

			rec, err := c.DecodeFrameHex(args[0])
			if err != nil {
				return err
			}
			out, err := rec.MarshalJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

// buildCodec loads the configured field registry and binds a codec to it.
func buildCodec(cmd *cobra.Command, cfgPath *string) (*codec.Codec, error) {
	cfg := cliconfig.DefaultConfig()
	if _, err := loadConfig(cmd, &cfg, *cfgPath); err != nil {
		return nil, err
	}
	reg, err := cfg.BuildRegistry()
	if err != nil {
		return nil, err
	}
	return codec.New(reg), nil
}
