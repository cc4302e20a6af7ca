package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "w3greplay",
		Short:         "Parse and inspect Warcraft III replay (.w3g) files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().
				Timestamp().
				Logger()
		},
	}

	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newInfoCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newBatchCmd())

	return root
}
