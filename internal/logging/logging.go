// Package logging builds the hclog loggers shared by the CLI and server.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options controls logger construction.
type Options struct {
	Name    string
	Verbose bool
	Quiet   bool
	JSON    bool
	Output  io.Writer
}

// Level returns the level implied by the verbose and quiet flags.
// Quiet wins over verbose.
func (o Options) Level() hclog.Level {
	switch {
	case o.Quiet:
		return hclog.Error
	case o.Verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// New creates a logger. Output defaults to stderr so that stdout stays
// reserved for command results.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      opts.Level(),
		Output:     out,
		JSONFormat: opts.JSON,
	})
}

// Discard returns a logger that drops everything.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
