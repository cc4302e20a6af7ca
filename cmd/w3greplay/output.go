package main

import (
	"encoding/json"
	"os"
)

// printJSON writes v to stdout as indented JSON, used by subcommands that
// honor the --json persistent flag.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
