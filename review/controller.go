// Package review finalizes a batch of pending changes: accept commits
// them to the document and storage, reject restores the pre-batch
// snapshot.
//
// Information Hiding:
// - Removal-span deletion ordering hidden inside Accept
// - Archive and registry lifecycle hidden from callers
package review

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/richinex/redline/document"
	"github.com/richinex/redline/model"
	"github.com/richinex/redline/storage"
	"github.com/richinex/redline/track"
)

// ErrNothingPending is returned when a verdict arrives with no pending
// batch to act on.
var ErrNothingPending = errors.New("review: no pending changes")

// ErrPersist wraps storage failures during finalization. The in-memory
// document already reflects the verdict when this is returned.
var ErrPersist = errors.New("review: failed to persist document")

// Controller applies accept/reject verdicts for a whole pending batch.
type Controller struct {
	doc      document.Model
	registry *track.Registry
	store    storage.Store
	logger   *zap.Logger
}

// NewController wires a controller over the live document, the operation
// registry, and the persistence layer.
func NewController(doc document.Model, registry *track.Registry, store storage.Store, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		doc:      doc,
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Accept commits every pending operation. Removal-styled spans are
// deleted from the document (additions are already in place from the
// optimistic apply), highlights are cleared, and the result is persisted
// as the new baseline. The verdict is applied in memory even when
// persistence fails.
func (c *Controller) Accept(ctx context.Context, documentID string) error {
	pending := c.registry.AllPending()
	if len(pending) == 0 {
		return ErrNothingPending
	}

	// Delete back to front so earlier spans keep their offsets.
	highlights := c.doc.Highlights()
	for i := len(highlights) - 1; i >= 0; i-- {
		h := highlights[i]
		if h.Style != document.HighlightRemoval {
			continue
		}
		c.doc.ApplyRange(h.Range, document.RangeOp{Kind: document.RangeDelete})
	}
	c.doc.ClearHighlights()

	for _, op := range pending {
		c.registry.Resolve(op.ID, model.StatusAccepted)
	}

	c.logger.Info("batch accepted",
		zap.String("document", documentID),
		zap.Int("operations", len(pending)))

	return c.finalize(ctx, documentID)
}

// Reject discards every pending operation by restoring the pre-batch
// snapshot. Restoring content drops all highlights.
func (c *Controller) Reject(ctx context.Context, documentID string, snapshot model.DocumentSnapshot) error {
	pending := c.registry.AllPending()
	if len(pending) == 0 {
		return ErrNothingPending
	}

	c.doc.SetContent(snapshot.Content)

	for _, op := range pending {
		c.registry.Resolve(op.ID, model.StatusRejected)
	}

	c.logger.Info("batch rejected",
		zap.String("document", documentID),
		zap.Int("operations", len(pending)))

	return c.finalize(ctx, documentID)
}

// finalize archives the resolved batch, clears the registry, and persists
// the document content. Archive failures are logged but do not block the
// save; a lost audit row must not strand the user's verdict.
func (c *Controller) finalize(ctx context.Context, documentID string) error {
	resolved := c.registry.All()
	if err := c.store.ArchiveOperations(ctx, documentID, resolved); err != nil {
		c.logger.Warn("failed to archive operations",
			zap.String("document", documentID),
			zap.Error(err))
	}
	c.registry.Clear()

	if err := c.store.SaveDocument(ctx, documentID, c.doc.Content()); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
