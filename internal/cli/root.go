package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/nostrpow/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config and Logger are resolved before any subcommand runs.
	// Commands built without the root fall back to defaults.
	Config *config.Config
	Logger *logrus.Logger

	// Getenv overrides os.LookupEnv; tests use it to isolate the environment.
	Getenv func(string) (string, bool)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the nostrpow CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nostrpow",
		Short: "nostrpow - NIP-13 proof of work for Nostr events",
		Long: `Mine, prepare and finish proof-of-work nonces for Nostr events.

Events are read as JSON from a file or stdin. The nonce tag commits to the
target difficulty and the event id is recomputed from the canonical form.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(NewMineCommand(opts))
	cmd.AddCommand(NewPrepareCommand(opts))
	cmd.AddCommand(NewFinishCommand(opts))
	cmd.AddCommand(NewSerializeCommand(opts))

	return cmd
}

// resolve loads configuration and builds the logger, which writes to the
// command's stderr.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	lookup := o.Getenv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := config.Default()
	if o.ConfigPath != "" {
		if err := cfg.LoadFile(o.ConfigPath); err != nil {
			return o.formatter(cmd).Fail(&configError{err: err})
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return o.formatter(cmd).Fail(&configError{err: err})
	}
	if err := cfg.Validate(); err != nil {
		return o.formatter(cmd).Fail(&configError{err: err})
	}

	logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, o.Verbose)
	if err != nil {
		return o.formatter(cmd).Fail(&configError{err: err})
	}
	o.Config = &cfg
	o.Logger = logger
	return nil
}

// settings returns the resolved configuration or the defaults.
func (o *RootOptions) settings() config.Config {
	if o.Config != nil {
		return *o.Config
	}
	return config.Default()
}

// logger returns the resolved logger or one that discards everything.
func (o *RootOptions) logger() *logrus.Entry {
	if o.Logger != nil {
		return logrus.NewEntry(o.Logger)
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
