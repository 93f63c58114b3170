// Package logger provides opinionated logging capabilities for sedstart
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

type config struct {
	level  slog.Level
	pretty bool
	json   bool
	source bool
	writer io.Writer

	// profile overrides the color profile the pretty handler detects from
	// its writer. nil keeps detection.
	profile *termenv.Profile
}

// New returns a *slog.Logger configured by opts. Without options it writes
// slog text records at Info level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	w := c.writer
	if w == nil {
		w = os.Stdout
	}

	switch {
	case c.json:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		}))

	case c.pretty:
		level := charmlog.InfoLevel
		if c.level <= slog.LevelDebug {
			level = charmlog.DebugLevel
		}
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			ReportCaller:    c.source,
		})
		if c.profile != nil {
			h.SetColorProfile(*c.profile)
		}
		return slog.New(h)

	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		}))
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
