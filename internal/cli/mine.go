package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip13"
	"github.com/spf13/cobra"

	"github.com/roach88/nostrpow/internal/event"
	"github.com/roach88/nostrpow/internal/miner"
	"github.com/roach88/nostrpow/internal/pow"
)

// MineResult is the JSON payload of the mine command.
type MineResult struct {
	Event      json.RawMessage `json:"event"`
	ID         string          `json:"id"`
	Nonce      string          `json:"nonce"`
	Difficulty int             `json:"difficulty"`
	Achieved   int             `json:"achieved"`
	Duration   string          `json:"duration"`
}

type mineOptions struct {
	difficulty int
	workers    int
	timeout    time.Duration
	async      bool
}

// NewMineCommand creates the mine command.
func NewMineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &mineOptions{}

	cmd := &cobra.Command{
		Use:   "mine [event.json|-]",
		Short: "Find a nonce and print the finished event",
		Long: `Mine a proof-of-work nonce for an event read from a file or stdin.

Any existing nonce tag is replaced. The printed event carries the new nonce
tag and its recomputed id; any signature on the input is no longer valid.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().IntVarP(&opts.difficulty, "difficulty", "d", 0, "required leading zero bits (default from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "search goroutines, 0 for one per CPU (default from config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up after this long, 0 for no limit (default from config)")
	cmd.Flags().BoolVar(&opts.async, "async", false, "dispatch the search asynchronously")

	return cmd
}

func runMine(rootOpts *RootOptions, opts *mineOptions, cmd *cobra.Command, args []string) error {
	formatter := rootOpts.formatter(cmd)
	cfg := rootOpts.settings()
	log := rootOpts.logger()

	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.workers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	d := cfg.Difficulty
	if cmd.Flags().Changed("difficulty") {
		var err error
		if d, err = pow.NewDifficulty(opts.difficulty); err != nil {
			return formatter.Fail(err)
		}
	}

	ev, err := readEvent(cmd, args)
	if err != nil {
		return formatter.Fail(err)
	}

	m := miner.New(miner.WithWorkers(cfg.Workers), miner.WithLogger(log))
	prover := pow.New(m,
		pow.WithLogger(log),
		pow.WithMaxMarkerAttempts(cfg.MaxMarkerAttempts),
	)
	formatter.VerboseLog("Mining at difficulty %d with %d worker(s)", d, m.Workers())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	var finished nostr.Event
	if opts.async {
		finished, err = prover.ComputeProofOfWorkAsync(ctx, ev, d).Wait(ctx)
	} else {
		finished, err = prover.ComputeProofOfWork(ctx, ev, d)
	}
	if err != nil {
		return formatter.Fail(err)
	}
	elapsed := time.Since(start)

	raw, err := event.Marshal(finished)
	if err != nil {
		return formatter.Fail(err)
	}
	result := MineResult{
		Event:      raw,
		ID:         finished.ID,
		Nonce:      finished.Tags[len(finished.Tags)-1][1],
		Difficulty: int(d),
		Achieved:   nip13.Difficulty(finished.ID),
		Duration:   elapsed.String(),
	}

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintln(w, string(raw))
		fmt.Fprintf(formatter.GetErrWriter(), "id %s: %d leading zero bits (target %d) in %s\n",
			result.ID, result.Achieved, result.Difficulty, result.Duration)
	})
}
