package validation

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteSummary renders a human-readable report: per-clip table, totals, then
// every error and warning.
func WriteSummary(w io.Writer, report Report) error {
	var b strings.Builder

	if len(report.Clips) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Clip", "Valid", "Duration", "Resolution", "Size (MB)", "Title"})
		for _, clip := range report.Clips {
			tw.AppendRow(table.Row{
				clip.ClipID,
				yesNo(clip.Valid),
				formatDuration(clip.Duration),
				formatResolution(clip.Width, clip.Height),
				fmt.Sprintf("%.2f", clip.FileSizeMB),
				formatTitle(clip.Title),
			})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight},
			{Number: 5, Align: text.AlignRight},
		})
		b.WriteString(tw.Render())
		b.WriteString("\n\n")
	}

	status := "PASS"
	if !report.Valid {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "Validation: %s\n", status)
	fmt.Fprintf(&b, "Clips: %d total, %d valid, %d invalid\n", report.ClipsTotal, report.ClipsValid, report.ClipsInvalid)

	if len(report.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors (%d):\n", len(report.Errors))
		for _, msg := range report.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWarnings (%d):\n", len(report.Warnings))
		for _, msg := range report.Warnings {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatDuration(d *float64) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fs", *d)
}

func formatResolution(w, h *int) string {
	if w == nil || h == nil {
		return "-"
	}
	return fmt.Sprintf("%dx%d", *w, *h)
}

func formatTitle(title *string) string {
	if title == nil || strings.TrimSpace(*title) == "" {
		return "-"
	}
	const limit = 40
	runes := []rune(*title)
	if len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}
	return *title
}
