package runevent

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Icon returns the glyph shown next to a status.
func Icon(status string) string {
	switch strings.ToUpper(status) {
	case StatusPass, StatusSuccess, "PASSED", "COMPLETED":
		return passStyle.Render("✓")
	case "FAIL", "FAILED", "ERROR", "ABORTED", "CANCELLED":
		return failStyle.Render("✗")
	case "RUNNING", "IN_PROGRESS", "STARTED", "QUEUED", "PENDING":
		return runningStyle.Render("●")
	default:
		return neutralStyle.Render("•")
	}
}

// Render formats an event as one human-readable log line:
//
//	✓ PASS login flow: All steps passed  step=3  time=1.2s
//
// status is the status the event reported, or empty when it carried none.
func Render(ev *Event, status string) string {
	var b strings.Builder

	b.WriteString(Icon(status))
	if status != "" {
		b.WriteString(" ")
		b.WriteString(status)
	}

	name := ev.Field(func(s Section) string { return s.Name })
	message := ev.Field(func(s Section) string { return s.Message })

	switch {
	case name != "" && message != "":
		b.WriteString(" " + nameStyle.Render(name) + ": " + message)
	case name != "":
		b.WriteString(" " + nameStyle.Render(name))
	case message != "":
		b.WriteString(" " + message)
	}

	extras := []struct {
		label string
		pick  func(Section) string
	}{
		{"step", func(s Section) string { return s.Step }},
		{"time", func(s Section) string { return s.Time }},
		{"error", func(s Section) string { return s.Error }},
		{"video", func(s Section) string { return s.Video }},
	}

	for _, extra := range extras {
		v := ev.Field(extra.pick)
		if v == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(extra.label + "="))
		if extra.label == "error" {
			b.WriteString(failStyle.Render(v))
		} else {
			b.WriteString(v)
		}
	}

	return b.String()
}
