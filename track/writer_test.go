package track

import (
	"errors"
	"testing"

	"github.com/richinex/redline/document"
	"github.com/richinex/redline/model"
)

func newWriter(content string) (*Writer, *document.Buffer, *Registry) {
	doc := document.NewBuffer(content)
	reg := NewRegistry(nil)
	return NewWriter(doc, reg, nil), doc, reg
}

func TestAddContent(t *testing.T) {
	w, doc, reg := newWriter("hello world")

	id, err := w.AddContent(model.Caret(5), " brave")
	if err != nil {
		t.Fatalf("AddContent failed: %v", err)
	}

	if doc.Content() != "hello brave world" {
		t.Errorf("expected optimistic apply, got %q", doc.Content())
	}

	op, ok := reg.Get(id)
	if !ok {
		t.Fatal("expected operation registered")
	}
	if op.Kind != model.KindAddition || op.Status != model.StatusPending {
		t.Errorf("unexpected operation: kind=%s status=%s", op.Kind, op.Status)
	}
	if op.BeforeText != "" || op.AfterText != " brave" {
		t.Errorf("unexpected snapshots: before=%q after=%q", op.BeforeText, op.AfterText)
	}
	if doc.TextAt(op.Range) != " brave" {
		t.Errorf("operation range does not cover inserted text: %q", doc.TextAt(op.Range))
	}

	hs := doc.Highlights()
	if len(hs) != 1 || hs[0].Style != document.HighlightAddition {
		t.Errorf("expected one addition highlight, got %v", hs)
	}
}

func TestAddContentRejectsNonCaret(t *testing.T) {
	w, _, _ := newWriter("hello")
	if _, err := w.AddContent(model.ContentRange{From: 0, To: 3}, "x"); err == nil {
		t.Error("expected error for non-caret range")
	}
}

func TestMarkRemoval(t *testing.T) {
	w, doc, reg := newWriter("hello cruel world")

	id, err := w.MarkRemoval(model.ContentRange{From: 5, To: 11})
	if err != nil {
		t.Fatalf("MarkRemoval failed: %v", err)
	}

	// Text stays in place until Accept.
	if doc.Content() != "hello cruel world" {
		t.Errorf("removal must not delete text, got %q", doc.Content())
	}

	op, _ := reg.Get(id)
	if op.Kind != model.KindRemoval {
		t.Errorf("expected removal, got %s", op.Kind)
	}
	if op.BeforeText != " cruel" {
		t.Errorf("expected beforeText ' cruel', got %q", op.BeforeText)
	}
	if op.AfterText != "" {
		t.Errorf("expected empty afterText, got %q", op.AfterText)
	}

	hs := doc.Highlights()
	if len(hs) != 1 || hs[0].Style != document.HighlightRemoval {
		t.Errorf("expected one removal highlight, got %v", hs)
	}
}

func TestMarkRemovalRejectsCaret(t *testing.T) {
	w, _, _ := newWriter("hello")
	if _, err := w.MarkRemoval(model.Caret(2)); err == nil {
		t.Error("expected error for caret range")
	}
}

func TestReplace(t *testing.T) {
	w, doc, reg := newWriter("the quick fox")

	id, err := w.Replace(model.ContentRange{From: 4, To: 9}, "sluggish")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// Original text keeps its place; replacement is inserted right after.
	if doc.Content() != "the quicksluggish fox" {
		t.Errorf("unexpected content after replace: %q", doc.Content())
	}

	op, _ := reg.Get(id)
	if op.Kind != model.KindReplacement {
		t.Errorf("expected replacement, got %s", op.Kind)
	}
	if op.BeforeText != "quick" || op.AfterText != "sluggish" {
		t.Errorf("unexpected snapshots: before=%q after=%q", op.BeforeText, op.AfterText)
	}

	hs := doc.Highlights()
	if len(hs) != 2 {
		t.Fatalf("expected dual highlight, got %d", len(hs))
	}
	if hs[0].Style != document.HighlightRemoval || hs[1].Style != document.HighlightAddition {
		t.Errorf("unexpected highlight styles: %v, %v", hs[0].Style, hs[1].Style)
	}
	if doc.TextAt(hs[0].Range) != "quick" {
		t.Errorf("removal highlight covers %q", doc.TextAt(hs[0].Range))
	}
	if doc.TextAt(hs[1].Range) != "sluggish" {
		t.Errorf("addition highlight covers %q", doc.TextAt(hs[1].Range))
	}
}

func TestBeforeTextMatchesDocument(t *testing.T) {
	w, _, reg := newWriter("abcdefghij")

	id, err := w.Replace(model.ContentRange{From: 2, To: 7}, "XYZ")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	op, _ := reg.Get(id)
	if op.BeforeText != "cdefg" {
		t.Errorf("beforeText must equal pre-mutation content, got %q", op.BeforeText)
	}
}

func TestWriterWithoutDocument(t *testing.T) {
	w := NewWriter(nil, NewRegistry(nil), nil)

	_, err := w.AddContent(model.Caret(0), "x")
	if !errors.Is(err, ErrEditorUnavailable) {
		t.Errorf("expected ErrEditorUnavailable, got %v", err)
	}
	_, err = w.MarkRemoval(model.ContentRange{From: 0, To: 1})
	if !errors.Is(err, ErrEditorUnavailable) {
		t.Errorf("expected ErrEditorUnavailable, got %v", err)
	}
	_, err = w.Replace(model.ContentRange{From: 0, To: 1}, "x")
	if !errors.Is(err, ErrEditorUnavailable) {
		t.Errorf("expected ErrEditorUnavailable, got %v", err)
	}
}
