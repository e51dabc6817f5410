package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nostrpow/internal/event"
)

// SerializeResult is the JSON payload of the serialize command.
type SerializeResult struct {
	Serialized string `json:"serialized"`
	ID         string `json:"id"`
	IDMatches  *bool  `json:"id_matches,omitempty"`
}

// NewSerializeCommand creates the serialize command.
func NewSerializeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serialize [event.json|-]",
		Short: "Print the canonical serialization and id of an event",
		Long: `Print the exact bytes hashed to form the event id, followed by the id.

If the input carries an id, "id_matches" reports whether it is correct.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			ev, err := readEvent(cmd, args)
			if err != nil {
				return formatter.Fail(err)
			}
			if err := event.Validate(ev); err != nil {
				return formatter.Fail(err)
			}

			serialized := event.Serialize(ev)
			result := SerializeResult{
				Serialized: string(serialized),
				ID:         event.HashSerialized(serialized),
			}
			if ev.ID != "" {
				matches := event.CheckID(ev)
				result.IDMatches = &matches
			}

			return formatter.Success(result, func(w io.Writer) {
				fmt.Fprintln(w, result.Serialized)
				fmt.Fprintln(w, result.ID)
				if result.IDMatches != nil && !*result.IDMatches {
					fmt.Fprintf(formatter.GetErrWriter(), "warning: input id %s does not match\n", ev.ID)
				}
			})
		},
	}

	return cmd
}
