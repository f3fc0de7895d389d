// Package storage provides persistence for documents, chat transcripts,
// and resolved-operation archives.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Allows swapping between memory and SQLite without API changes
package storage

import (
	"context"
	"errors"

	"github.com/richinex/redline/model"
)

// ErrDocumentNotFound is returned when fetching a document that does not
// exist.
var ErrDocumentNotFound = errors.New("storage: document not found")

// Store defines the persistence contract the engine depends on. All
// operations are fallible and retryless at this layer; retries, if any,
// belong to the implementation.
type Store interface {
	// FetchDocument loads the current content of a document as a snapshot.
	FetchDocument(ctx context.Context, id string) (model.DocumentSnapshot, error)

	// SaveDocument persists content as the document's new baseline and
	// records a revision.
	SaveDocument(ctx context.Context, id, content string) error

	// SaveChatMessage appends a message to the document's transcript.
	SaveChatMessage(ctx context.Context, documentID string, msg model.ChatMessage) error

	// LoadChatMessages returns the transcript in insertion order.
	// Returns empty slice (not nil) for an unknown document.
	LoadChatMessages(ctx context.Context, documentID string) ([]model.ChatMessage, error)

	// ArchiveOperations records resolved operations for audit.
	ArchiveOperations(ctx context.Context, documentID string, ops []model.Operation) error
}
