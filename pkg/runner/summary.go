package runner

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
)

// Markdown renders the outcome as a job summary.
func (o *Outcome) Markdown() string {
	var b strings.Builder

	verdict := "❌ Failed"
	if o.Success {
		verdict = "✅ Passed"
	}

	fmt.Fprintf(&b, "### SedStart run %s\n\n", verdict)
	b.WriteString("| | |\n|---|---|\n")

	rows := [][2]string{
		{"Target", o.Target},
		{"Final status", "`" + o.FinalStatus + "`"},
		{"Events", fmt.Sprint(o.Events)},
		{"Malformed events", fmt.Sprint(o.Malformed)},
		{"Plain lines", fmt.Sprint(o.PlainLines)},
		{"Duration", cliui.FormatDuration(o.Duration)},
	}
	if o.Repository != "" {
		rows = append([][2]string{{"Repository", o.Repository}}, rows...)
	}
	if o.RequestID != "" {
		rows = append(rows, [2]string{"Request ID", "`" + o.RequestID + "`"})
	}

	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
	}

	return b.String()
}
