// Change writer: applies a single mutation to the document model, tags the
// affected range, and registers a pending operation.
package track

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richinex/redline/document"
	"github.com/richinex/redline/model"
)

// ErrEditorUnavailable is returned when no live document model is attached.
// Fatal to the current operation, not to the session.
var ErrEditorUnavailable = errors.New("track: no document model attached")

// Writer applies mutations optimistically: every call changes the visible
// document immediately. Accept/Reject correctness depends on the stored
// operation snapshots, never on re-deriving state from the document.
type Writer struct {
	doc      document.Model
	registry *Registry
	logger   *zap.Logger
}

// NewWriter creates a writer over the given document and registry.
// doc may be nil; calls then fail with ErrEditorUnavailable.
func NewWriter(doc document.Model, registry *Registry, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{doc: doc, registry: registry, logger: logger}
}

// AddContent inserts text at the caret range (From == To), highlights the
// inserted span as an addition, and registers a pending Addition operation.
// Returns the operation id.
func (w *Writer) AddContent(r model.ContentRange, text string) (string, error) {
	if w.doc == nil {
		return "", ErrEditorUnavailable
	}

	r = r.Clamp(w.doc.Length())
	if !r.IsCaret() {
		return "", fmt.Errorf("addition requires a caret range, got %s", r)
	}

	w.doc.ApplyRange(r, document.RangeOp{Kind: document.RangeInsert, Text: text})

	inserted := model.ContentRange{From: r.From, To: r.From + len(text)}
	w.doc.Highlight(inserted, document.HighlightAddition)

	return w.register(model.Operation{
		Kind:      model.KindAddition,
		Range:     inserted,
		AfterText: text,
	})
}

// MarkRemoval highlights existing text in the range for removal without
// deleting it; the actual deletion happens on Accept. Registers a pending
// Removal operation and returns its id.
func (w *Writer) MarkRemoval(r model.ContentRange) (string, error) {
	if w.doc == nil {
		return "", ErrEditorUnavailable
	}

	r = r.Clamp(w.doc.Length())
	if r.IsCaret() {
		return "", fmt.Errorf("removal requires a non-empty range, got %s", r)
	}

	before := w.doc.TextAt(r)
	w.doc.Highlight(r, document.HighlightRemoval)

	return w.register(model.Operation{
		Kind:       model.KindRemoval,
		Range:      r,
		BeforeText: before,
	})
}

// Replace marks the original span as removed and inserts the replacement
// text immediately after it, highlighted as an addition. Registers a
// pending Replacement operation capturing both snapshots.
func (w *Writer) Replace(r model.ContentRange, text string) (string, error) {
	if w.doc == nil {
		return "", ErrEditorUnavailable
	}

	r = r.Clamp(w.doc.Length())
	before := w.doc.TextAt(r)

	w.doc.Highlight(r, document.HighlightRemoval)
	w.doc.ApplyRange(model.Caret(r.To), document.RangeOp{Kind: document.RangeInsert, Text: text})

	inserted := model.ContentRange{From: r.To, To: r.To + len(text)}
	w.doc.Highlight(inserted, document.HighlightAddition)

	return w.register(model.Operation{
		Kind:       model.KindReplacement,
		Range:      model.ContentRange{From: r.From, To: inserted.To},
		BeforeText: before,
		AfterText:  text,
	})
}

// register fills in id, status and timestamp and stores the operation.
func (w *Writer) register(op model.Operation) (string, error) {
	op.ID = uuid.New().String()
	op.Status = model.StatusPending
	op.CreatedAt = time.Now().Unix()

	if err := w.registry.Register(op); err != nil {
		return "", fmt.Errorf("failed to register operation: %w", err)
	}

	w.logger.Debug("operation applied",
		zap.String("operation", op.ID),
		zap.String("kind", op.Kind.String()),
		zap.String("range", op.Range.String()))

	return op.ID, nil
}
