// Package cliui provides reusable terminal UI helpers (marks, styles, color
// profile selection, markdown rendering) for sedstart CLI commands.
package cliui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	StepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	NameStyle   = lipgloss.NewStyle().Bold(true)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	WarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// ColorProfile picks the color profile for output written to a stream.
//
// NO_COLOR always disables color. Under GitHub Actions stdout is a pipe but
// the log viewer renders ANSI, so 256 colors are forced there. Otherwise
// color follows the terminal.
func ColorProfile(getenv func(string) string, tty bool) termenv.Profile {
	switch {
	case getenv("NO_COLOR") != "":
		return termenv.Ascii
	case getenv("GITHUB_ACTIONS") == "true":
		return termenv.ANSI256
	case !tty:
		return termenv.Ascii
	default:
		return termenv.EnvColorProfile()
	}
}

// ConfigureColor applies ColorProfile for f to the default lipgloss renderer
// and returns it so it can be handed to other renderers, such as the pretty
// logger.
func ConfigureColor(f *os.File) termenv.Profile {
	profile := ColorProfile(os.Getenv, IsTerminal(f))
	lipgloss.SetColorProfile(profile)
	return profile
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// RenderMarkdown renders markdown content for terminal display using glamour.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
