package preview

import (
	"strings"
	"testing"

	"github.com/richinex/redline/model"
)

// exec mirrors what the apply step produces: a post-mutation range plus the
// operation's captured before/after snapshots.
func exec(tool string, r *model.ContentRange, before, after string) model.ToolExecution {
	return model.ToolExecution{
		ToolName:      tool,
		Success:       true,
		OperationID:   "op",
		AffectedRange: r,
		BeforeText:    before,
		AfterText:     after,
	}
}

func rng(from, to int) *model.ContentRange {
	r := model.ContentRange{From: from, To: to}
	return &r
}

func TestGenerateCountsMatchClassifiedExecutions(t *testing.T) {
	executions := []model.ToolExecution{
		exec("insert_content", rng(0, 7), "", "Intro. "),
		exec("remove_content", rng(11, 16), "quick", ""),
		exec("replace_content", rng(17, 25), "brown", "red"),
		exec("insert_content", nil, "", "unresolved"),  // no range: skipped
		exec("mystery_tool", rng(0, 3), "the", "the?"), // unknown tool: skipped
	}

	p := Generate(executions)

	if p.Summary.Additions != 1 || p.Summary.Removals != 1 || p.Summary.Replacements != 1 {
		t.Errorf("unexpected counts: %+v", p.Summary)
	}
	if p.Summary.Total != 3 {
		t.Errorf("total must equal classified executions with a range, got %d", p.Summary.Total)
	}
	if p.Summary.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", p.Summary.Skipped)
	}
	if len(p.Changes) != p.Summary.Total {
		t.Errorf("change list length %d != total %d", len(p.Changes), p.Summary.Total)
	}
}

func TestGenerateRemovalUsesCapturedText(t *testing.T) {
	p := Generate([]model.ToolExecution{
		exec("remove_content", rng(5, 11), " cruel", ""),
	})

	if len(p.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(p.Changes))
	}
	c := p.Changes[0]
	if c.BeforeText != " cruel" {
		t.Errorf("expected captured beforeText, got %q", c.BeforeText)
	}
	if c.AfterText != "" {
		t.Errorf("removal must have empty afterText, got %q", c.AfterText)
	}
	if !strings.Contains(p.HTML, "<del") || strings.Contains(p.HTML, "<ins") {
		t.Errorf("removal should render only a del fragment:\n%s", p.HTML)
	}
}

func TestGenerateAdditionUsesCapturedText(t *testing.T) {
	p := Generate([]model.ToolExecution{
		exec("insert_content", rng(3, 16), "", "\n\nNew section"),
	})

	c := p.Changes[0]
	if c.AfterText != "\n\nNew section" {
		t.Errorf("expected captured afterText, got %q", c.AfterText)
	}
	if c.BeforeText != "" {
		t.Errorf("addition must have empty beforeText, got %q", c.BeforeText)
	}
}

func TestGenerateReplacementRendersBothFragments(t *testing.T) {
	// A replacement's registered range spans the old text plus the staged
	// replacement, e.g. [4,17) for "quick" + "sluggish" in "the quick fox".
	// Only the captured snapshots may reach the rendered fragments.
	p := Generate([]model.ToolExecution{
		exec("replace_content", rng(4, 17), "quick", "sluggish"),
	})

	c := p.Changes[0]
	if c.BeforeText != "quick" || c.AfterText != "sluggish" {
		t.Errorf("unexpected texts: before=%q after=%q", c.BeforeText, c.AfterText)
	}
	if !strings.Contains(p.HTML, "<del") || !strings.Contains(p.HTML, "<ins") {
		t.Errorf("replacement should render dual fragments:\n%s", p.HTML)
	}
	if strings.Contains(p.HTML, "fox") {
		t.Errorf("text outside the replaced span leaked into the preview:\n%s", p.HTML)
	}
}

func TestGenerateEscapesHTML(t *testing.T) {
	p := Generate([]model.ToolExecution{
		exec("insert_content", rng(0, 25), "", "<script>alert(1)</script>"),
	})

	if strings.Contains(p.HTML, "<script>") {
		t.Error("inserted text must be escaped in rendered HTML")
	}
}

func TestTextDiff(t *testing.T) {
	hunks := TextDiff("line one\nline two\nline three\n", "line one\nline 2\nline three\n")
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}

	var added, removed, context int
	for _, l := range hunks[0].Lines {
		switch l.Type {
		case LineAdded:
			added++
		case LineRemoved:
			removed++
		case LineContext:
			context++
		}
	}
	if added != 1 || removed != 1 || context != 2 {
		t.Errorf("unexpected line mix: added=%d removed=%d context=%d", added, removed, context)
	}
}

func TestTextDiffEmptyBothSides(t *testing.T) {
	if hunks := TextDiff("", ""); hunks != nil {
		t.Errorf("expected nil for empty inputs, got %v", hunks)
	}
}
