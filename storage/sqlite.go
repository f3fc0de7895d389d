// SQLite-backed persistence.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/redline/model"
)

// SqliteStore implements Store using a SQLite database file.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS revisions (
			document_id TEXT NOT NULL,
			revision INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (document_id, revision),
			FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			sent_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chat_document
		ON chat_messages(document_id, id);

		CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			range_from INTEGER NOT NULL,
			range_to INTEGER NOT NULL,
			before_text TEXT NOT NULL,
			after_text TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			archived_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_operations_document
		ON operations(document_id, archived_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// FetchDocument loads the current content of a document as a snapshot.
func (s *SqliteStore) FetchDocument(ctx context.Context, id string) (model.DocumentSnapshot, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM documents WHERE id = ?", id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DocumentSnapshot{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if err != nil {
		return model.DocumentSnapshot{}, fmt.Errorf("failed to fetch document: %w", err)
	}

	return model.DocumentSnapshot{
		DocumentID: id,
		Content:    content,
		TakenAt:    time.Now(),
	}, nil
}

// SaveDocument persists content as the new baseline and appends a revision.
func (s *SqliteStore) SaveDocument(ctx context.Context, id, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		id, content, now)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(revision), 0) + 1 FROM revisions WHERE document_id = ?",
		id).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to determine next revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO revisions (document_id, revision, content, created_at) VALUES (?, ?, ?, ?)",
		id, next, content, now)
	if err != nil {
		return fmt.Errorf("failed to record revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveChatMessage appends a message to the document's transcript.
func (s *SqliteStore) SaveChatMessage(ctx context.Context, documentID string, msg model.ChatMessage) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_messages (document_id, role, content, sent_at) VALUES (?, ?, ?, ?)",
		documentID, string(msg.Role), msg.Content, msg.SentAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// LoadChatMessages returns the transcript in insertion order.
func (s *SqliteStore) LoadChatMessages(ctx context.Context, documentID string) ([]model.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, sent_at FROM chat_messages WHERE document_id = ? ORDER BY id ASC",
		documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := []model.ChatMessage{} // Start with empty slice, not nil
	for rows.Next() {
		var role, content string
		var sentAt int64
		if err := rows.Scan(&role, &content, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, model.ChatMessage{
			Role:    model.ChatRole(role),
			Content: content,
			SentAt:  time.Unix(sentAt, 0),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	return messages, nil
}

// ArchiveOperations records resolved operations for audit.
func (s *SqliteStore) ArchiveOperations(ctx context.Context, documentID string, ops []model.Operation) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO operations
		(id, document_id, kind, range_from, range_to, before_text, after_text, status, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare archive statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, op := range ops {
		_, err = stmt.ExecContext(ctx,
			op.ID, documentID, op.Kind.String(),
			op.Range.From, op.Range.To,
			op.BeforeText, op.AfterText,
			op.Status.String(), op.CreatedAt, now)
		if err != nil {
			return fmt.Errorf("failed to archive operation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ArchivedOperations loads the audit trail for a document, newest first.
func (s *SqliteStore) ArchivedOperations(ctx context.Context, documentID string) ([]model.Operation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, range_from, range_to, before_text, after_text, status, created_at
		FROM operations
		WHERE document_id = ?
		ORDER BY archived_at DESC, created_at DESC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []model.Operation
	for rows.Next() {
		var op model.Operation
		var kind, status string
		if err := rows.Scan(&op.ID, &kind, &op.Range.From, &op.Range.To,
			&op.BeforeText, &op.AfterText, &status, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Kind = parseKind(kind)
		op.Status = parseStatus(status)
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	return ops, nil
}

func parseKind(s string) model.OperationKind {
	switch s {
	case "removal":
		return model.KindRemoval
	case "replacement":
		return model.KindReplacement
	default:
		return model.KindAddition
	}
}

func parseStatus(s string) model.OperationStatus {
	switch s {
	case "accepted":
		return model.StatusAccepted
	case "rejected":
		return model.StatusRejected
	default:
		return model.StatusPending
	}
}

// Verify SqliteStore implements Store
var _ Store = (*SqliteStore)(nil)
