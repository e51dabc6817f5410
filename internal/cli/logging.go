package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/roach88/nostrpow/internal/config"
)

// NewLogger builds the diagnostic logger. verbose forces debug level.
func NewLogger(w io.Writer, level, format string, verbose bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)

	switch format {
	case config.FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case config.FormatText, "":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:  true,
			DisableSorting: true,
		})
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger, nil
}
