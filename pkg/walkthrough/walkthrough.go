// Package walkthrough renders a human-readable account of a plan and
// its previewed effect, for review before anyone types --confirm.
package walkthrough

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/preview"
)

// BuildMarkdown assembles the walkthrough document. diff and warnings
// may be nil/empty.
func BuildMarkdown(p *plan.Plan, diff *preview.Diff, warnings []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Plan %s\n\n", p.ID)
	if p.Goal != "" {
		fmt.Fprintf(&b, "**Goal:** %s\n\n", p.Goal)
	}
	if p.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Summary)
	}

	b.WriteString("## Steps\n\n")
	for i, s := range p.Steps {
		marker := "inspect"
		if s.Type == plan.StepMutate {
			marker = "mutate"
		}
		fmt.Fprintf(&b, "%d. **%s** (`%s`, %s)", i+1, s.Label, s.Command.Action, marker)
		if s.Rationale != "" {
			fmt.Fprintf(&b, " — %s", s.Rationale)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if p.Safety.RequiresConfirm {
		b.WriteString("## Safety\n\n")
		b.WriteString("This plan **requires confirmation** before it is applied:\n\n")
		for _, r := range p.Safety.Reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	if diff != nil && !diff.Empty() {
		b.WriteString("## Preview\n\n")
		fmt.Fprintf(&b, "%d key(s) added, %d removed, %d changed.\n\n",
			diff.TotalAdded, diff.TotalRemoved, diff.TotalChanged)
		b.WriteString("```\n")
		b.WriteString(diffTable(diff))
		b.WriteString("```\n\n")
	} else if diff != nil {
		b.WriteString("## Preview\n\nNo keyframe changes.\n\n")
	}

	if len(warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// diffTable formats the per-track diff as a fixed-width table. Column
// widths are computed with runewidth so non-ASCII object names line up.
func diffTable(diff *preview.Diff) string {
	headers := []string{"OBJECT", "PROPERTY", "ADDED", "REMOVED", "CHANGED"}
	rows := make([][]string, 0, len(diff.Tracks))
	for _, t := range diff.Tracks {
		rows = append(rows, []string{
			t.ObjectID,
			t.PropertyPath,
			fmt.Sprintf("%d", t.KeysAdded),
			fmt.Sprintf("%d", t.KeysRemoved),
			fmt.Sprintf("%d", t.KeysChanged),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// Render converts the markdown to styled terminal output. Falls back to
// the raw markdown if rendering fails.
func Render(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
