// Command w3greplay inspects and validates Warcraft III replay (.w3g)
// files from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
