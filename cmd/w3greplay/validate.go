package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/condor/w3greplay/pkg/w3g"
)

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <replay.w3g>...",
		Short: "Check that one or more replay files parse without structural errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]validationResult, 0, len(args))
			failures := 0

			for _, path := range args {
				parser := w3g.NewParser()
				parser.Strict = strict

				result := validationResult{Path: path, Valid: true}
				if _, err := parser.Parse(path); err != nil {
					result.Valid = false
					result.Error = classifyError(err)
					failures++
				}
				results = append(results, result)

				if !jsonOutput {
					printValidationLine(result)
				}
			}

			if jsonOutput {
				if err := printJSON(results); err != nil {
					return err
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d replay(s) failed validation", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on frame or action decoding errors instead of stopping decoding there (unknown opcodes are always tolerated)")

	return cmd
}

type validationResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func printValidationLine(r validationResult) {
	if r.Valid {
		fmt.Printf("OK   %s\n", r.Path)
		return
	}
	fmt.Printf("FAIL %s: %s\n", r.Path, r.Error)
}

// classifyError returns a short, stable category name for the structured
// parse error kinds, falling back to the raw error text for anything else
// (I/O failures and similar).
func classifyError(err error) string {
	var magicErr *w3g.InvalidMagicError
	var headerErr *w3g.InvalidHeaderError
	var eofErr *w3g.UnexpectedEOFError
	var decompErr *w3g.DecompressionError
	var utf8Err *w3g.InvalidUTF8Error

	switch {
	case errors.As(err, &magicErr):
		return "invalid_magic: " + magicErr.Error()
	case errors.As(err, &headerErr):
		return "invalid_header: " + headerErr.Error()
	case errors.As(err, &eofErr):
		return "unexpected_eof: " + eofErr.Error()
	case errors.As(err, &decompErr):
		return "decompression: " + decompErr.Error()
	case errors.As(err, &utf8Err):
		return "invalid_utf8: " + utf8Err.Error()
	default:
		return err.Error()
	}
}
