package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/condor/w3greplay/pkg/w3g"
)

var showChat bool

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <replay.w3g>",
		Short: "Fully decode a replay and print players, chat and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			record, err := parseReplay(path)
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := record.ToJSON(true)
				if err != nil {
					return fmt.Errorf("encode JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			printSummary(record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showChat, "chat", true, "print chat messages in the summary")

	return cmd
}

func parseReplay(path string) (*w3g.GameRecord, error) {
	log.Debug().Str("path", path).Msg("parsing replay")
	record, err := w3g.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Str("map", record.MapName).
		Int("players", len(record.Players)).
		Int("actions", len(record.Actions)).
		Msg("parsed replay")
	return record, nil
}

func printSummary(record *w3g.GameRecord) {
	fmt.Printf("Game:     %s\n", record.GameName)
	fmt.Printf("Map:      %s\n", record.MapName)
	fmt.Printf("Host:     %s\n", record.HostName)
	fmt.Printf("Duration: %s\n", record.Envelope.DurationString())
	if record.Settings != nil {
		fmt.Printf("Speed:    %s\n", record.Settings.SpeedName())
	}

	fmt.Println("\nPlayers:")
	for _, p := range record.Players {
		fmt.Printf("  [%2d] %-20s actions=%-6d apm=%.1f\n", p.SlotID, p.Name, p.ActionCount, p.APM)
	}

	if showChat && len(record.ChatMessages) > 0 {
		fmt.Println("\nChat:")
		for _, c := range record.ChatMessages {
			fmt.Printf("  %s\n", c.Message)
		}
	}

	stats := w3g.NewReplayStatistics(record)
	fmt.Printf("\n%s\n", stats)
}
