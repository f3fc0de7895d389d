package document

import (
	"errors"
	"testing"

	"github.com/richinex/redline/model"
)

func intPtr(v int) *int { return &v }

func rangePtr(from, to int) *model.ContentRange {
	r := model.ContentRange{From: from, To: to}
	return &r
}

func TestResolveSelection(t *testing.T) {
	doc := NewBuffer("some document content")
	r := NewResolver()

	got, err := r.Resolve(doc, Hint{Selection: rangePtr(5, 13)})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != (model.ContentRange{From: 5, To: 13}) {
		t.Errorf("expected [5,13), got %v", got)
	}
}

func TestResolveSelectionClampedToBounds(t *testing.T) {
	doc := NewBuffer("short")
	r := NewResolver()

	got, err := r.Resolve(doc, Hint{Selection: rangePtr(2, 400)})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != (model.ContentRange{From: 2, To: 5}) {
		t.Errorf("expected clamped [2,5), got %v", got)
	}
}

func TestResolveCursor(t *testing.T) {
	doc := NewBuffer("abcdef")
	r := NewResolver()

	got, err := r.Resolve(doc, Hint{Cursor: intPtr(3)})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.IsCaret() || got.From != 3 {
		t.Errorf("expected caret at 3, got %v", got)
	}
}

func TestResolvePredicateFirstMatchWins(t *testing.T) {
	doc := NewBuffer("tiny\n\na paragraph that is clearly longer than the threshold\n\nanother long paragraph that also matches the predicate")
	r := NewResolver()

	got, err := r.Resolve(doc, Hint{Predicate: &ParagraphPredicate{MinLength: 20}})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if doc.TextAt(got) != "a paragraph that is clearly longer than the threshold" {
		t.Errorf("expected first matching paragraph, got %q", doc.TextAt(got))
	}
}

func TestResolvePredicateDeterministic(t *testing.T) {
	doc := NewBuffer("one long enough paragraph here\n\nanother long enough paragraph")
	r := NewResolver()
	hint := Hint{Predicate: &ParagraphPredicate{MinLength: 10}}

	first, err := r.Resolve(doc, hint)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := r.Resolve(doc, hint)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if first != second {
		t.Errorf("resolution not deterministic: %v vs %v", first, second)
	}
}

func TestResolvePredicateFallsBackToSelection(t *testing.T) {
	doc := NewBuffer("tiny\n\nstill tiny")
	doc.SetSelection(model.ContentRange{From: 2, To: 4})
	r := NewResolver()

	got, err := r.Resolve(doc, Hint{Predicate: &ParagraphPredicate{MinLength: 500}})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != (model.ContentRange{From: 2, To: 4}) {
		t.Errorf("expected selection fallback [2,4), got %v", got)
	}
}

func TestResolvePredicateFallsBackToCursorSpan(t *testing.T) {
	doc := NewBuffer("tiny content here")
	r := NewResolver()

	got, err := r.Resolve(doc, Hint{
		Cursor:    intPtr(4),
		Predicate: &ParagraphPredicate{MinLength: 500},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != (model.ContentRange{From: 4, To: 14}) {
		t.Errorf("expected fallback [4,14), got %v", got)
	}
}

func TestResolveEmptyHint(t *testing.T) {
	doc := NewBuffer("content")
	r := NewResolver()

	_, err := r.Resolve(doc, Hint{})
	if !errors.Is(err, ErrResolutionNotFound) {
		t.Errorf("expected ErrResolutionNotFound, got %v", err)
	}
}

func TestResolveNeverOutOfBounds(t *testing.T) {
	r := NewResolver()
	docs := []string{"", "x", "some longer content with words"}
	hints := []Hint{
		{Selection: rangePtr(-10, 500)},
		{Cursor: intPtr(-1)},
		{Cursor: intPtr(9999)},
		{Predicate: &ParagraphPredicate{MinLength: 0}},
		{Predicate: &ParagraphPredicate{MinLength: 100000}},
	}

	for _, content := range docs {
		doc := NewBuffer(content)
		for _, hint := range hints {
			got, err := r.Resolve(doc, hint)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", content, err)
			}
			if got.From > got.To {
				t.Errorf("inverted range %v for doc %q", got, content)
			}
			if got.From < 0 || got.To > doc.Length() {
				t.Errorf("out-of-bounds range %v for doc %q", got, content)
			}
		}
	}
}
