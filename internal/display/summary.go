package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harrison/tgrep/internal/models"
)

// FormatSummary returns the one-line result of a search without color.
// Format: "12 matches found." optionally followed by " (Limit reached)" or
// " (Search cancelled)". Cancellation wins when both happened.
func FormatSummary(summary models.SearchSummary) string {
	line := fmt.Sprintf("%d matches found.", summary.TotalMatches)

	switch summary.Outcome() {
	case models.OutcomeCancelled:
		line += " (Search cancelled)"
	case models.OutcomeLimitReached:
		line += " (Limit reached)"
	}

	return line
}

// PrintSummary writes the summary preceded by a blank line, yellow when
// anything matched and red otherwise.
func PrintSummary(out io.Writer, summary models.SearchSummary, useColor bool) {
	attr := color.FgRed
	if summary.TotalMatches > 0 {
		attr = color.FgYellow
	}

	fmt.Fprintf(out, "\n%s\n", paint(useColor, attr).Sprint(FormatSummary(summary)))

	if summary.FilesFailed > 0 {
		label := "file"
		if summary.FilesFailed != 1 {
			label = "files"
		}
		fmt.Fprintf(out, "%s\n", paint(useColor, color.FgRed).Sprintf("%d %s could not be read.", summary.FilesFailed, label))
	}
}

// PrintError writes "Error: <err>" in red.
func PrintError(out io.Writer, err error, useColor bool) {
	fmt.Fprintln(out, paint(useColor, color.FgRed).Sprintf("Error: %v", err))
}
