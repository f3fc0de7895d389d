// Position resolution: locating a target range from cursor state or
// content heuristics.
package document

import (
	"strings"

	"github.com/richinex/redline/model"
)

// fallbackSpan is the width of the synthesized range used when a
// structural hint has no match and only a cursor is available.
const fallbackSpan = 10

// Hint describes where an edit should land. Exactly one locator is
// normally set; precedence when several are present is Selection, then
// Predicate, then Cursor.
type Hint struct {
	// Selection targets the given range directly.
	Selection *model.ContentRange

	// Cursor targets a caret at the given offset (for insertions).
	Cursor *int

	// Predicate targets the first paragraph matching a structural test.
	Predicate *ParagraphPredicate
}

// ParagraphPredicate selects the first paragraph whose trimmed text length
// exceeds MinLength.
type ParagraphPredicate struct {
	MinLength int
}

// Empty returns true when the hint carries no locator at all.
func (h Hint) Empty() bool {
	return h.Selection == nil && h.Cursor == nil && h.Predicate == nil
}

// Resolver resolves hints against a document. Resolution is deterministic
// for identical document content: the earliest match wins.
type Resolver struct{}

// NewResolver creates a resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve locates the target range for a hint. Selection and cursor hints
// resolve in O(1). Predicate hints scan paragraphs in document order; when
// no paragraph matches, the result falls back to a synthesized range (the
// current selection, or a short span after the cursor). The returned range
// is always within [0, doc.Length()] with From <= To.
func (r *Resolver) Resolve(doc Model, hint Hint) (model.ContentRange, error) {
	if hint.Empty() {
		return model.ContentRange{}, ErrResolutionNotFound
	}

	docLen := doc.Length()

	if hint.Selection != nil {
		return hint.Selection.Clamp(docLen), nil
	}

	if hint.Predicate != nil {
		if match, ok := r.firstParagraph(doc, *hint.Predicate); ok {
			return match, nil
		}
		return r.Fallback(doc, hint), nil
	}

	return model.Caret(*hint.Cursor).Clamp(docLen), nil
}

// Fallback synthesizes a range when no structural match exists: the current
// selection when non-empty, otherwise a short span after the cursor (or the
// selection caret), clamped to document bounds.
func (r *Resolver) Fallback(doc Model, hint Hint) model.ContentRange {
	docLen := doc.Length()

	sel := doc.Selection()
	if !sel.IsCaret() {
		return sel.Clamp(docLen)
	}

	at := sel.From
	if hint.Cursor != nil {
		at = *hint.Cursor
	}
	return model.NewRange(at, at+fallbackSpan).Clamp(docLen)
}

// firstParagraph returns the earliest paragraph satisfying the predicate.
func (r *Resolver) firstParagraph(doc Model, pred ParagraphPredicate) (model.ContentRange, bool) {
	content := doc.Content()
	for _, span := range Paragraphs(content) {
		text := strings.TrimSpace(content[span.From:span.To])
		if len(text) > pred.MinLength {
			return span, true
		}
	}
	return model.ContentRange{}, false
}
