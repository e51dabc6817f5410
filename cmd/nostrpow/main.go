// Command nostrpow mines NIP-13 proof-of-work nonces for Nostr events.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/nostrpow/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own failures; anything else came from cobra's
	// argument handling.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
