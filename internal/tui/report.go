package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/hylla/nametag/internal/app"
)

const (
	reportStyle     = "dark"
	reportWrapWidth = 80
	reportMinWidth  = 24
)

// Report builds the markdown run summary: counts, output files, and one table row per warning kind.
func Report(snap app.Snapshot, outputs []string, elapsed time.Duration) string {
	var b strings.Builder
	name := snap.CompetitionName
	if name == "" {
		name = snap.CompetitionID
	}
	fmt.Fprintf(&b, "## %s\n\n", name)
	fmt.Fprintf(&b, "- **Competitors:** %d\n", len(snap.Competitors))
	fmt.Fprintf(&b, "- **Pages:** %d (%d x %d tags, %s)\n", len(snap.Pages), snap.Layout.Columns(), snap.Layout.Rows(), snap.Layout.Paper.Name)
	fmt.Fprintf(&b, "- **Rounds:** %d\n", len(snap.Rounds))
	if elapsed > 0 {
		fmt.Fprintf(&b, "- **Elapsed:** %s\n", elapsed.Round(time.Millisecond))
	}
	for _, out := range outputs {
		fmt.Fprintf(&b, "- **Output:** `%s`\n", out)
	}
	if len(snap.Diagnostics) == 0 {
		return b.String()
	}
	b.WriteString("\n### Warnings\n\n| Kind | Count | Example |\n|---|---|---|\n")
	for _, w := range snap.Diagnostics {
		example := ""
		if len(w.Samples) > 0 {
			example = strings.ReplaceAll(w.Samples[0], "|", `\|`)
		}
		fmt.Fprintf(&b, "| %s | %d | %s |\n", w.Kind, w.Count, example)
	}
	return b.String()
}

// reportRenderer styles markdown for the terminal, rebuilding glamour only when the wrap width changes.
type reportRenderer struct {
	width int
	term  *glamour.TermRenderer
}

func (r *reportRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	if width < reportMinWidth {
		width = reportWrapWidth
	}
	if r.term == nil || r.width != width {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(reportStyle),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
		)
		if err != nil {
			return markdown
		}
		r.term = term
		r.width = width
	}
	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

// RenderReport styles a markdown report for plain terminal output. Rendering
// failures fall back to the raw markdown.
func RenderReport(markdown string, width int) string {
	var r reportRenderer
	return r.render(markdown, width)
}
