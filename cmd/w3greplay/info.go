package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/condor/w3greplay/pkg/w3g"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <replay.w3g>",
		Short: "Print the envelope header without decoding the game record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			log.Debug().Str("path", path).Msg("reading envelope header")

			envelope, err := w3g.ParseHeaderOnly(path)
			if err != nil {
				return fmt.Errorf("parse header %s: %w", path, err)
			}

			if jsonOutput {
				return printJSON(map[string]interface{}{
					"format":        envelope.Format.String(),
					"build_version": envelope.BuildVersion,
					"version":       envelope.VersionString(),
					"duration_ms":   envelope.DurationMs,
					"duration":      envelope.DurationString(),
				})
			}

			fmt.Printf("Format:   %s\n", envelope.Format)
			fmt.Printf("Version:  %s (build %d)\n", envelope.VersionString(), envelope.BuildVersion)
			fmt.Printf("Duration: %s\n", envelope.DurationString())
			return nil
		},
	}
	return cmd
}
