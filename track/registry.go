// Package track records AI mutations as reviewable operations.
//
// Information Hiding:
// - Operation bookkeeping hidden behind the Registry API
// - Document mutation and highlighting sequencing hidden in Writer
package track

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/richinex/redline/model"
)

// Registry is the in-memory map from operation id to change metadata.
// Pure bookkeeping: no network or persistence side effects. Not safe for
// concurrent use; all entry points are serialized by the engine's event
// loop.
type Registry struct {
	ops    map[string]*model.Operation
	order  []string
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		ops:    make(map[string]*model.Operation),
		logger: logger,
	}
}

// Register adds an operation. Returns an error if the id is already taken.
func (r *Registry) Register(op model.Operation) error {
	if _, exists := r.ops[op.ID]; exists {
		return fmt.Errorf("operation %q already registered", op.ID)
	}
	stored := op
	r.ops[op.ID] = &stored
	r.order = append(r.order, op.ID)
	return nil
}

// Get returns a copy of the operation with the given id.
func (r *Registry) Get(id string) (model.Operation, bool) {
	op, ok := r.ops[id]
	if !ok {
		return model.Operation{}, false
	}
	return *op, true
}

// Resolve moves a pending operation to a terminal status. Resolving an
// already-resolved id is a logged no-op: duplicate UI events must not
// corrupt state.
func (r *Registry) Resolve(id string, status model.OperationStatus) {
	if !status.Terminal() {
		r.logger.Warn("ignoring resolve to non-terminal status",
			zap.String("operation", id),
			zap.String("status", status.String()))
		return
	}

	op, ok := r.ops[id]
	if !ok {
		r.logger.Warn("resolve for unknown operation", zap.String("operation", id))
		return
	}
	if op.Status.Terminal() {
		r.logger.Debug("duplicate resolve ignored",
			zap.String("operation", id),
			zap.String("status", op.Status.String()))
		return
	}
	op.Status = status
}

// AllPending returns pending operations in registration order.
func (r *Registry) AllPending() []model.Operation {
	var pending []model.Operation
	for _, id := range r.order {
		if op := r.ops[id]; op.Status == model.StatusPending {
			pending = append(pending, *op)
		}
	}
	return pending
}

// All returns every registered operation in registration order.
func (r *Registry) All() []model.Operation {
	out := make([]model.Operation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.ops[id])
	}
	return out
}

// Clear drops all entries. Called after a resolved batch is archived.
func (r *Registry) Clear() {
	r.ops = make(map[string]*model.Operation)
	r.order = nil
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.ops)
}
