// In-memory persistence for tests and ephemeral sessions.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/richinex/redline/model"
)

// MemoryStore implements Store with in-process maps. Safe for concurrent
// use. All reads return copies so callers cannot mutate stored state.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]string
	messages  map[string][]model.ChatMessage
	archived  map[string][]model.Operation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]string),
		messages:  make(map[string][]model.ChatMessage),
		archived:  make(map[string][]model.Operation),
	}
}

// FetchDocument loads the current content of a document as a snapshot.
func (m *MemoryStore) FetchDocument(_ context.Context, id string) (model.DocumentSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.documents[id]
	if !ok {
		return model.DocumentSnapshot{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return model.DocumentSnapshot{
		DocumentID: id,
		Content:    content,
		TakenAt:    time.Now(),
	}, nil
}

// SaveDocument persists content as the document's new baseline.
func (m *MemoryStore) SaveDocument(_ context.Context, id, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents[id] = content
	return nil
}

// SaveChatMessage appends a message to the document's transcript.
func (m *MemoryStore) SaveChatMessage(_ context.Context, documentID string, msg model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages[documentID] = append(m.messages[documentID], msg)
	return nil
}

// LoadChatMessages returns a copy of the transcript in insertion order.
func (m *MemoryStore) LoadChatMessages(_ context.Context, documentID string) ([]model.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.messages[documentID]
	out := make([]model.ChatMessage, len(stored))
	copy(out, stored)
	return out, nil
}

// ArchiveOperations records resolved operations for audit.
func (m *MemoryStore) ArchiveOperations(_ context.Context, documentID string, ops []model.Operation) error {
	if len(ops) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.archived[documentID] = append(m.archived[documentID], ops...)
	return nil
}

// ArchivedOperations returns a copy of the audit trail for a document.
func (m *MemoryStore) ArchivedOperations(_ context.Context, documentID string) ([]model.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.archived[documentID]
	out := make([]model.Operation, len(stored))
	copy(out, stored)
	return out, nil
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
