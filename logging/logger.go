package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger represents a logger instance
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// Phase values tag log entries so that generation and post-write formatting
// problems can be told apart.
const (
	PhaseSchema    = "schema"
	PhaseDocuments = "documents"
	PhaseRender    = "render"
	PhaseScalar    = "scalar"
	PhaseWrite     = "write"
	PhaseFormat    = "format"
)

// Options selects the verbosity of a logger.
type Options struct {
	// ErrorsOnly suppresses informational and progress output.
	ErrorsOnly bool
	// Verbose enables debug output and wins over ErrorsOnly.
	Verbose bool
	// JSON switches to the JSON formatter.
	JSON bool
	Out  io.Writer
}

// NewLogger creates a new configured logger instance
func NewLogger(opts Options) *logrus.Logger {
	logger := logrus.New()
	if opts.Out != nil {
		logger.SetOutput(opts.Out)
	} else {
		logger.SetOutput(os.Stderr)
	}
	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	logger.SetLevel(Level(opts))
	return logger
}

// Level returns the level implied by opts.
func Level(opts Options) logrus.Level {
	switch {
	case opts.Verbose:
		return logrus.DebugLevel
	case opts.ErrorsOnly:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything, for tests and library callers
// that pass no logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
