// In-memory document buffer.
//
// Information Hiding:
// - Content storage and span shifting hidden
// - Suitable for testing and headless sessions; a host editor can supply
//   its own Model instead
package document

import (
	"sort"
	"strings"

	"github.com/richinex/redline/model"
)

// Buffer implements Model with a plain string and a span list.
// Not safe for concurrent use; the engine serializes all access.
type Buffer struct {
	content    string
	highlights []Highlight
	selection  model.ContentRange
}

// NewBuffer creates a buffer with the given initial content.
func NewBuffer(content string) *Buffer {
	return &Buffer{content: content}
}

// Content returns the full document content.
func (b *Buffer) Content() string {
	return b.content
}

// SetContent replaces the content and drops all highlights.
func (b *Buffer) SetContent(content string) {
	b.content = content
	b.highlights = nil
	b.selection = b.selection.Clamp(len(content))
}

// Length returns the content length in bytes.
func (b *Buffer) Length() int {
	return len(b.content)
}

// TextAt returns the content covered by the range, clamped to bounds.
func (b *Buffer) TextAt(r model.ContentRange) string {
	r = r.Clamp(len(b.content))
	return b.content[r.From:r.To]
}

// ApplyRange applies a mutation at the given range and shifts existing
// highlight spans and the selection to follow the edit.
func (b *Buffer) ApplyRange(r model.ContentRange, op RangeOp) {
	r = r.Clamp(len(b.content))

	switch op.Kind {
	case RangeInsert:
		b.content = b.content[:r.From] + op.Text + b.content[r.From:]
		b.shiftForInsert(r.From, len(op.Text))
	case RangeDelete:
		b.content = b.content[:r.From] + b.content[r.To:]
		b.shiftForDelete(r)
	case RangeReplace:
		b.content = b.content[:r.From] + op.Text + b.content[r.To:]
		b.shiftForDelete(r)
		b.shiftForInsert(r.From, len(op.Text))
	}

	b.selection = b.selection.Clamp(len(b.content))
}

// Highlight marks a range with the given style.
func (b *Buffer) Highlight(r model.ContentRange, style HighlightStyle) {
	r = r.Clamp(len(b.content))
	if r.IsCaret() {
		return
	}
	b.highlights = append(b.highlights, Highlight{Range: r, Style: style})
}

// Highlights returns the current marks in document order.
func (b *Buffer) Highlights() []Highlight {
	out := make([]Highlight, len(b.highlights))
	copy(out, b.highlights)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.From < out[j].Range.From
	})
	return out
}

// ClearHighlights removes all marks without touching content.
func (b *Buffer) ClearHighlights() {
	b.highlights = nil
}

// Selection returns the current selection.
func (b *Buffer) Selection() model.ContentRange {
	return b.selection.Clamp(len(b.content))
}

// SetSelection moves the selection.
func (b *Buffer) SetSelection(r model.ContentRange) {
	b.selection = r.Clamp(len(b.content))
}

// shiftForInsert moves spans at or after the insertion point right by n.
// A span containing the insertion point grows to cover the inserted text.
func (b *Buffer) shiftForInsert(at, n int) {
	for i := range b.highlights {
		h := &b.highlights[i]
		if h.Range.From >= at {
			h.Range.From += n
			h.Range.To += n
		} else if h.Range.To > at {
			h.Range.To += n
		}
	}
}

// shiftForDelete moves spans after the deleted range left and truncates
// spans overlapping it. Spans fully inside the deletion collapse and are
// dropped.
func (b *Buffer) shiftForDelete(r model.ContentRange) {
	n := r.Len()
	kept := b.highlights[:0]
	for _, h := range b.highlights {
		switch {
		case h.Range.To <= r.From:
			// Entirely before the deletion.
		case h.Range.From >= r.To:
			h.Range.From -= n
			h.Range.To -= n
		default:
			if h.Range.From > r.From {
				h.Range.From = r.From
			}
			if h.Range.To > r.To {
				h.Range.To -= n
			} else {
				h.Range.To = r.From
			}
		}
		if h.Range.To > h.Range.From {
			kept = append(kept, h)
		}
	}
	b.highlights = kept
}

// Paragraphs splits content into paragraph spans in document order.
// Paragraphs are separated by blank lines.
func Paragraphs(content string) []model.ContentRange {
	var spans []model.ContentRange
	offset := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			spans = append(spans, model.ContentRange{From: offset, To: offset + len(block)})
		}
		offset += len(block) + 2
	}
	return spans
}

// Verify Buffer implements Model
var _ Model = (*Buffer)(nil)
