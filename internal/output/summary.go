// Package output provides formatted output for run summaries.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/awooooool/tlsrpt-extractor/pkg/types"
)

// Styles for terminal output.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// SummaryOutput renders a run summary as styled terminal output.
func SummaryOutput(summary *types.RunSummary) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("TLS-RPT Extraction Summary"))
	sb.WriteString("\n\n")

	source := "local files"
	if summary.Mailbox != "" {
		source = summary.Mailbox
	}
	sb.WriteString(fmt.Sprintf("Run %s (%s)\n", mutedStyle.Render(summary.RunID), source))

	sb.WriteString(fmt.Sprintf("Processed %d messages, %d attachments: %s reports flattened, %s records written\n",
		summary.Messages,
		summary.Attachments,
		passStyle.Render(fmt.Sprintf("%d", summary.Reports)),
		passStyle.Render(fmt.Sprintf("%d", summary.RecordsWritten))))

	if len(summary.Errors) > 0 {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(fmt.Sprintf("Errors (%d):", len(summary.Errors))))
		sb.WriteString("\n")
		for _, e := range summary.Errors {
			sb.WriteString(fmt.Sprintf("  %s %s %s\n",
				mutedStyle.Render("["+e.Stage+"]"),
				e.Unit+":",
				failStyle.Render(e.Error)))
		}
	}

	return sb.String()
}
