package cli

import (
	"io"
	"os"

	"github.com/nbd-wtf/go-nostr"
	"github.com/spf13/cobra"

	"github.com/roach88/nostrpow/internal/event"
)

// readEvent parses the event named by args, or stdin when args is empty
// or "-".
func readEvent(cmd *cobra.Command, args []string) (nostr.Event, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return nostr.Event{}, err
	}
	return event.Parse(data)
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, &readError{err: err}
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, &readError{err: err}
	}
	return data, nil
}
