// Package logging builds the diagnostic logger. Diagnostics go to stderr so
// that stdout carries only the response.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

const Prefix = "reqq"

// New returns a logger writing to w. Verbose lowers the level to debug.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: verbose,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
