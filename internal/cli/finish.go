package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nbd-wtf/go-nostr/nip13"
	"github.com/spf13/cobra"

	"github.com/roach88/nostrpow/internal/event"
	"github.com/roach88/nostrpow/internal/pow"
)

// FinishResult is the JSON payload of the finish command.
type FinishResult struct {
	ID       string          `json:"id"`
	Achieved int             `json:"achieved"`
	Event    json.RawMessage `json:"event"`
}

// NewFinishCommand creates the finish command.
func NewFinishCommand(rootOpts *RootOptions) *cobra.Command {
	var nonce string

	cmd := &cobra.Command{
		Use:   "finish [prepared.json|-] --nonce N",
		Short: "Embed a nonce into a prepared event",
		Long: `Finish an event produced by "prepare".

The nonce replaces the value of the trailing nonce tag and the id is
recomputed. The nonce is not checked against the committed difficulty;
compare "achieved" with the tag's target to verify it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			prepared, err := readEvent(cmd, args)
			if err != nil {
				return formatter.Fail(err)
			}
			if event.NeedsEscape(nonce) {
				rootOpts.logger().WithField("nonce", nonce).Warn("Nonce needs JSON escaping; miners hash it unescaped")
			}

			finished, err := pow.Finish(prepared, nonce)
			if err != nil {
				return formatter.Fail(err)
			}
			raw, err := event.Marshal(finished)
			if err != nil {
				return formatter.Fail(err)
			}

			result := FinishResult{
				ID:       finished.ID,
				Achieved: nip13.Difficulty(finished.ID),
				Event:    raw,
			}
			return formatter.Success(result, func(w io.Writer) {
				fmt.Fprintln(w, string(raw))
			})
		},
	}

	cmd.Flags().StringVar(&nonce, "nonce", "", "nonce found by the miner (required)")
	_ = cmd.MarkFlagRequired("nonce")

	return cmd
}
