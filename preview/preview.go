// Package preview renders a reviewable diff of a batch of tool executions,
// plus summary statistics.
//
// Information Hiding:
// - Tool-name classification hidden
// - Diff computation and HTML rendering hidden
package preview

import (
	"fmt"
	"html"
	"strings"

	"github.com/richinex/redline/model"
)

// Change is one classified, renderable entry in the review list.
type Change struct {
	Kind       model.OperationKind `json:"kind"`
	ToolName   string              `json:"tool_name"`
	Range      model.ContentRange  `json:"range"`
	BeforeText string              `json:"before_text"`
	AfterText  string              `json:"after_text"`
	Hunks      []Hunk              `json:"hunks"`
}

// Summary aggregates change counts for the review header.
// Total counts classified executions with a resolvable range; executions
// lacking one are tallied in Skipped and stay out of the visual diff.
type Summary struct {
	Additions    int `json:"additions"`
	Removals     int `json:"removals"`
	Replacements int `json:"replacements"`
	Skipped      int `json:"skipped"`
	Total        int `json:"total"`
}

// Preview is the rendered review payload.
type Preview struct {
	HTML    string   `json:"html"`
	Changes []Change `json:"changes"`
	Summary Summary  `json:"summary"`
}

// Generate renders the diff for one batch.
func Generate(executions []model.ToolExecution) Preview {
	var p Preview

	for _, exec := range executions {
		kind, ok := classifyTool(exec.ToolName)
		if !ok || exec.AffectedRange == nil {
			p.Summary.Skipped++
			continue
		}

		p.Changes = append(p.Changes, buildChange(exec, kind))

		switch kind {
		case model.KindAddition:
			p.Summary.Additions++
		case model.KindRemoval:
			p.Summary.Removals++
		case model.KindReplacement:
			p.Summary.Replacements++
		}
		p.Summary.Total++
	}

	p.HTML = renderHTML(p.Changes, p.Summary)
	return p
}

// classifyTool maps a tool name to an operation kind. Classification is by
// the tagged tool name only, never by sniffing rendered content.
func classifyTool(name string) (model.OperationKind, bool) {
	switch name {
	case "insert_content":
		return model.KindAddition, true
	case "remove_content":
		return model.KindRemoval, true
	case "replace_content":
		return model.KindReplacement, true
	default:
		return 0, false
	}
}

// buildChange renders one execution from the text snapshots captured when
// the operation was applied. Operation ranges after the first are in
// post-earlier-mutation coordinates (every optimistic insert shifts later
// offsets), so the pre-batch document is never re-sliced here.
func buildChange(exec model.ToolExecution, kind model.OperationKind) Change {
	change := Change{
		Kind:       kind,
		ToolName:   exec.ToolName,
		Range:      *exec.AffectedRange,
		BeforeText: exec.BeforeText,
		AfterText:  exec.AfterText,
	}
	change.Hunks = TextDiff(change.BeforeText, change.AfterText)
	return change
}

// renderHTML produces the highlighted diff fragments plus a summary line.
func renderHTML(changes []Change, summary Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(
		`<div class="redline-summary">%d additions, %d removals, %d replacements (%d total)</div>`,
		summary.Additions, summary.Removals, summary.Replacements, summary.Total))
	b.WriteString("\n")

	for _, c := range changes {
		b.WriteString(`<div class="redline-change">`)
		if c.BeforeText != "" {
			b.WriteString(`<del class="redline-removal">`)
			b.WriteString(html.EscapeString(c.BeforeText))
			b.WriteString(`</del>`)
		}
		if c.AfterText != "" {
			b.WriteString(`<ins class="redline-addition">`)
			b.WriteString(html.EscapeString(c.AfterText))
			b.WriteString(`</ins>`)
		}
		b.WriteString("</div>\n")
	}

	return b.String()
}
