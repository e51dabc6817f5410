package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nostrpow/internal/event"
	"github.com/roach88/nostrpow/internal/pow"
)

// PrepareResult is the JSON payload of the prepare command.
type PrepareResult struct {
	Marker     string          `json:"marker"`
	Prefix     string          `json:"prefix"`
	Suffix     string          `json:"suffix"`
	Difficulty int             `json:"difficulty"`
	Event      json.RawMessage `json:"event"`
}

// NewPrepareCommand creates the prepare command.
func NewPrepareCommand(rootOpts *RootOptions) *cobra.Command {
	var difficulty int

	cmd := &cobra.Command{
		Use:   "prepare [event.json|-]",
		Short: "Split an event around a placeholder nonce",
		Long: `Prepare an event for an external miner.

Prints the placeholder marker and the serialized bytes before and after it.
A miner hashes prefix + nonce + suffix; "finish" embeds the winning nonce.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			cfg := rootOpts.settings()

			d := cfg.Difficulty
			if cmd.Flags().Changed("difficulty") {
				var err error
				if d, err = pow.NewDifficulty(difficulty); err != nil {
					return formatter.Fail(err)
				}
			}

			ev, err := readEvent(cmd, args)
			if err != nil {
				return formatter.Fail(err)
			}

			prover := pow.New(nil,
				pow.WithLogger(rootOpts.logger()),
				pow.WithMaxMarkerAttempts(cfg.MaxMarkerAttempts),
			)
			w, err := prover.Prepare(ev, d)
			if err != nil {
				return formatter.Fail(err)
			}

			raw, err := event.Marshal(w.Event)
			if err != nil {
				return formatter.Fail(err)
			}
			result := PrepareResult{
				Marker:     w.Marker,
				Prefix:     string(w.Prefix),
				Suffix:     string(w.Suffix),
				Difficulty: int(w.Difficulty),
				Event:      raw,
			}
			return formatter.Success(result, func(out io.Writer) {
				fmt.Fprintf(out, "marker: %s\n", result.Marker)
				fmt.Fprintf(out, "prefix: %s\n", result.Prefix)
				fmt.Fprintf(out, "suffix: %s\n", result.Suffix)
				fmt.Fprintf(out, "event:  %s\n", raw)
			})
		},
	}

	cmd.Flags().IntVarP(&difficulty, "difficulty", "d", 0, "required leading zero bits (default from config)")

	return cmd
}
