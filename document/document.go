// Package document provides the live document model the engine mutates,
// plus position resolution from content heuristics and cursor state.
//
// Information Hiding:
// - Highlight span bookkeeping hidden behind the Model interface
// - Offset shifting on edits encapsulated in Buffer
package document

import (
	"errors"

	"github.com/richinex/redline/model"
)

// ErrResolutionNotFound is returned when no suitable target range exists
// for a structural hint. Callers fall back or abort.
var ErrResolutionNotFound = errors.New("document: no matching range found")

// HighlightStyle marks a document range as a pending-review change.
type HighlightStyle int

const (
	HighlightAddition HighlightStyle = iota
	HighlightRemoval
)

// String returns the string representation of the highlight style.
func (s HighlightStyle) String() string {
	switch s {
	case HighlightAddition:
		return "addition"
	case HighlightRemoval:
		return "removal"
	default:
		return "unknown"
	}
}

// Highlight is one marked span. Spans shift as the document is edited so
// they keep pointing at the same text.
type Highlight struct {
	Range model.ContentRange
	Style HighlightStyle
}

// RangeOpKind classifies a range operation against the document.
type RangeOpKind int

const (
	RangeInsert RangeOpKind = iota
	RangeDelete
	RangeReplace
)

// RangeOp is a single mutation applied at a range.
// Text is the inserted text for RangeInsert and RangeReplace.
type RangeOp struct {
	Kind RangeOpKind
	Text string
}

// Model is the document contract the engine mutates. Implementations keep
// highlight marks beside the content, never inside it: Content never
// contains markers.
type Model interface {
	// Content returns the full document content.
	Content() string

	// SetContent replaces the full document content and drops all highlights.
	SetContent(content string)

	// Length returns the content length in bytes.
	Length() int

	// TextAt returns the content covered by the range (clamped).
	TextAt(r model.ContentRange) string

	// ApplyRange applies a mutation at the given range. Existing highlight
	// spans shift to follow the edit.
	ApplyRange(r model.ContentRange, op RangeOp)

	// Highlight marks a range with the given style.
	Highlight(r model.ContentRange, style HighlightStyle)

	// Highlights returns the current marks in document order.
	Highlights() []Highlight

	// ClearHighlights removes all marks without touching content.
	ClearHighlights()

	// Selection returns the current selection, a caret when empty.
	Selection() model.ContentRange

	// SetSelection moves the selection (clamped to bounds).
	SetSelection(r model.ContentRange)
}
