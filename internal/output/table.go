package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloudmap/cloudmap/internal/models"
)

// ANSI color codes used when Colored=true.
const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[0;31m"
	ansiBold  = "\033[1m"
)

// categoryWidth fits the longest category name ("storage_accounts").
const categoryWidth = 18

// TableOptions controls how RenderTable formats the report.
type TableOptions struct {
	// Colored wraps error rows in red and the header in bold. Default false
	// (CI-safe).
	Colored bool

	// MaxIssueWidth truncates issue text to this many runes. Zero disables
	// truncation.
	MaxIssueWidth int
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// RenderTable writes report as a two-column table to w: a summary line,
// then one CATEGORY / ISSUE row per finding in category order.
//
//	CATEGORY            ISSUE
//	------------------  -----
//	security_groups     Security Group sg-42 has an open rule: ...
func RenderTable(w io.Writer, report *models.FindingsReport, opts TableOptions) {
	fmt.Fprintln(w, summaryLine(report))

	categories := report.Categories()
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories scanned.")
		return
	}

	header := fmt.Sprintf("%-*s  %s", categoryWidth, "CATEGORY", "ISSUE")
	sep := strings.Repeat("-", categoryWidth) + "  " + strings.Repeat("-", max(len("ISSUE"), opts.MaxIssueWidth))
	if opts.Colored {
		header = ansiBold + header + ansiReset
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, sep)

	var findings, errs int
	for _, c := range categories {
		for _, f := range report.Findings[c] {
			text := string(f)
			if opts.MaxIssueWidth > 0 {
				text = ShortenMessage(text, opts.MaxIssueWidth)
			}
			row := fmt.Sprintf("%-*s  %s", categoryWidth, c, text)
			if f.IsError() {
				errs++
				if opts.Colored {
					row = ansiRed + row + ansiReset
				}
			} else {
				findings++
			}
			fmt.Fprintln(w, row)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d categories, %d findings, %d errors\n", len(categories), findings, errs)
}

func summaryLine(report *models.FindingsReport) string {
	parts := []string{"Platform: " + string(report.Platform)}
	if report.Scope != "" {
		label := "Account"
		if report.Platform == models.PlatformAzure {
			label = "Subscription"
		}
		parts = append(parts, label+": "+report.Scope)
	}
	if len(report.Regions) > 0 {
		parts = append(parts, "Regions: "+strings.Join(report.Regions, ", "))
	}
	if !report.GeneratedAt.IsZero() {
		parts = append(parts, "Generated: "+report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return strings.Join(parts, "  |  ")
}
