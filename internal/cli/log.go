// Package cli implements the seamline command-line interface.
//
// The commands load a pattern spec, move it to an instance and either write
// the instance back out or render it:
//   - apply, restore, randomize, normalize: produce a new spec file
//   - inspect: print panels, parameters and edge lengths as tables
//   - render: generate SVG, PNG, PDF, JSON, DOT or influence graph output
//   - serve: run the HTTP preview API
//   - cache: manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// stderr; command output goes to stdout so it can be piped.
//
// # Configuration
//
// Defaults are read from ~/.config/seamline/config.toml (see [Config]) or the
// file named by --config.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Applied 2 parameters to skirt (3ms)"
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
