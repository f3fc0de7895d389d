// Package session ties one document to one editing conversation: it runs
// agent prompts, applies their tool calls to the live document, and
// exposes the review lifecycle for the resulting batch.
//
// Information Hiding:
// - Tool-argument parsing and hint construction hidden in ApplyTool
// - Snapshot lifecycle (capture, retain-while-pending, restore) hidden
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richinex/redline/document"
	"github.com/richinex/redline/model"
	"github.com/richinex/redline/preview"
	"github.com/richinex/redline/review"
	"github.com/richinex/redline/storage"
	"github.com/richinex/redline/stream"
	"github.com/richinex/redline/track"
)

// ErrBatchPending is returned when a prompt arrives while a previous batch
// still awaits review. Callers either surface the conflict or retry with
// ForceReject.
var ErrBatchPending = errors.New("session: a pending batch awaits review")

// ErrNoBatch is returned for verdicts or regeneration without a pending
// batch.
var ErrNoBatch = errors.New("session: no pending batch")

// Agent produces the staged response stream for one prompt. Implementations
// must close the channel after emitting a terminal stage.
type Agent interface {
	Run(ctx context.Context, prompt string, snapshot model.DocumentSnapshot, history []model.ChatMessage) <-chan model.AgentStage
}

// SubmitOptions tunes a single prompt submission.
type SubmitOptions struct {
	// ForceReject discards a still-pending batch instead of failing with
	// ErrBatchPending.
	ForceReject bool
}

// Outcome is everything one prompt produced: the aggregated stream result
// and, when changes landed, their rendered preview.
type Outcome struct {
	Result  stream.Result
	Preview *preview.Preview // nil when the batch is empty
}

// Session is the per-document editing conversation. Not safe for
// concurrent use; one prompt runs at a time.
type Session struct {
	id         string
	documentID string

	doc        document.Model
	registry   *track.Registry
	writer     *track.Writer
	resolver   *document.Resolver
	controller *review.Controller
	store      storage.Store
	agent      Agent
	logger     *zap.Logger

	// snapshot is non-nil exactly while a batch awaits review.
	snapshot   *model.DocumentSnapshot
	lastPrompt string

	// paragraphMinLength is the default paragraph-targeting threshold used
	// when a tool call does not supply a positive one.
	paragraphMinLength int
}

// Open loads the document from storage and starts a session over it.
func Open(ctx context.Context, documentID string, store storage.Store, agent Agent, logger *zap.Logger) (*Session, error) {
	snap, err := store.FetchDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return New(documentID, document.NewBuffer(snap.Content), store, agent, logger), nil
}

// New starts a session over an already-loaded document model.
func New(documentID string, doc document.Model, store storage.Store, agent Agent, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := track.NewRegistry(logger)
	return &Session{
		id:         uuid.New().String(),
		documentID: documentID,
		doc:        doc,
		registry:   registry,
		writer:     track.NewWriter(doc, registry, logger),
		resolver:   document.NewResolver(),
		controller: review.NewController(doc, registry, store, logger),
		store:      store,
		agent:      agent,
		logger:     logger,
	}
}

// WithParagraphMinLength sets the default paragraph-targeting threshold.
func (s *Session) WithParagraphMinLength(n int) *Session {
	s.paragraphMinLength = n
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// DocumentID returns the id of the document under edit.
func (s *Session) DocumentID() string {
	return s.documentID
}

// Document exposes the live document model for rendering.
func (s *Session) Document() document.Model {
	return s.doc
}

// HasPendingBatch reports whether a batch awaits review.
func (s *Session) HasPendingBatch() bool {
	return s.snapshot != nil
}

// Pending returns the pending operations in registration order.
func (s *Session) Pending() []model.Operation {
	return s.registry.AllPending()
}

// Submit sends a prompt to the agent and applies its tool calls to the
// document. The pre-prompt snapshot is captured first so the whole batch
// can be rolled back on Reject.
func (s *Session) Submit(ctx context.Context, prompt string, opts SubmitOptions) (Outcome, error) {
	if s.snapshot != nil {
		if !opts.ForceReject {
			return Outcome{}, ErrBatchPending
		}
		if err := s.Reject(ctx); err != nil {
			return Outcome{}, fmt.Errorf("failed to discard pending batch: %w", err)
		}
	}

	if err := s.store.SaveChatMessage(ctx, s.documentID, model.UserMessage(prompt)); err != nil {
		s.logger.Warn("failed to persist user message", zap.Error(err))
	}

	return s.run(ctx, prompt)
}

// Regenerate rejects the pending batch and re-runs the last prompt without
// duplicating the user's message in the transcript.
func (s *Session) Regenerate(ctx context.Context) (Outcome, error) {
	if s.snapshot == nil {
		return Outcome{}, ErrNoBatch
	}
	if s.lastPrompt == "" {
		return Outcome{}, fmt.Errorf("%w: nothing to regenerate", ErrNoBatch)
	}
	if err := s.Reject(ctx); err != nil {
		return Outcome{}, fmt.Errorf("failed to discard pending batch: %w", err)
	}
	return s.run(ctx, s.lastPrompt)
}

// run captures the snapshot, streams the agent's stages through the
// aggregator (with the session applying tool calls), and records the
// outcome.
func (s *Session) run(ctx context.Context, prompt string) (Outcome, error) {
	snapshot := model.DocumentSnapshot{
		DocumentID: s.documentID,
		Content:    s.doc.Content(),
		TakenAt:    time.Now(),
	}
	s.lastPrompt = prompt

	history, err := s.store.LoadChatMessages(ctx, s.documentID)
	if err != nil {
		s.logger.Warn("failed to load transcript, continuing without history", zap.Error(err))
		history = nil
	}

	stages := s.agent.Run(ctx, prompt, snapshot, history)
	result := stream.NewAggregator(s.logger).Consume(ctx, stages, s)

	outcome := Outcome{Result: result}

	// A batch exists when at least one execution landed an operation, even
	// when the stream later errored or was aborted.
	if s.registry.Len() > 0 {
		s.snapshot = &snapshot
		p := preview.Generate(result.Executions)
		outcome.Preview = &p
	}

	s.recordOutcome(ctx, result)
	return outcome, nil
}

// recordOutcome appends the assistant's reply (or its friendly error) to
// the transcript.
func (s *Session) recordOutcome(ctx context.Context, result stream.Result) {
	var msg model.ChatMessage
	switch result.State {
	case stream.StateErrored:
		msg = model.ErrorMessage(result.ErrorText)
	default:
		if result.Message == "" {
			return
		}
		msg = model.AssistantMessage(result.Message)
	}
	if err := s.store.SaveChatMessage(ctx, s.documentID, msg); err != nil {
		s.logger.Warn("failed to persist assistant message", zap.Error(err))
	}
}

// Accept commits the pending batch. The snapshot is released even when
// persistence fails: the verdict already landed in memory.
func (s *Session) Accept(ctx context.Context) error {
	if s.snapshot == nil {
		return ErrNoBatch
	}
	err := s.controller.Accept(ctx, s.documentID)
	s.snapshot = nil
	return err
}

// Reject rolls the document back to the pre-batch snapshot.
func (s *Session) Reject(ctx context.Context) error {
	if s.snapshot == nil {
		return ErrNoBatch
	}
	err := s.controller.Reject(ctx, s.documentID, *s.snapshot)
	s.snapshot = nil
	return err
}

// Transcript returns the persisted conversation for this document.
func (s *Session) Transcript(ctx context.Context) ([]model.ChatMessage, error) {
	return s.store.LoadChatMessages(ctx, s.documentID)
}

// toolArgs is the argument schema shared by the editing tools. All
// locator fields are optional; Text carries the content for insertions
// and replacements.
type toolArgs struct {
	Text               string              `json:"text,omitempty"`
	Selection          *model.ContentRange `json:"selection,omitempty"`
	Cursor             *int                `json:"cursor,omitempty"`
	ParagraphMinLength *int                `json:"paragraph_min_length,omitempty"`
}

// ApplyTool implements stream.ToolApplier: it resolves the target range
// from the tool's locator arguments and dispatches to the change writer.
// On success the execution gains its operation id and affected range.
func (s *Session) ApplyTool(ctx context.Context, exec *model.ToolExecution) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var args toolArgs
	if err := json.Unmarshal(exec.Arguments, &args); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}

	target, err := s.resolveTarget(args)
	if err != nil {
		return fmt.Errorf("failed to resolve target range: %w", err)
	}

	var id string
	switch exec.ToolName {
	case "insert_content":
		// A non-caret target means "insert after this"; collapse to its end.
		id, err = s.writer.AddContent(model.Caret(target.To), args.Text)
	case "remove_content":
		id, err = s.writer.MarkRemoval(target)
	case "replace_content":
		id, err = s.writer.Replace(target, args.Text)
	default:
		return fmt.Errorf("unknown editing tool %q", exec.ToolName)
	}
	if err != nil {
		return err
	}

	op, ok := s.registry.Get(id)
	if !ok {
		return fmt.Errorf("operation %q vanished after registration", id)
	}
	exec.OperationID = id
	exec.AffectedRange = &op.Range
	exec.BeforeText = op.BeforeText
	exec.AfterText = op.AfterText

	s.logger.Debug("tool applied",
		zap.String("tool", exec.ToolName),
		zap.String("operation", id),
		zap.String("range", op.Range.String()))
	return nil
}

// resolveTarget builds a hint from the tool arguments and resolves it. A
// tool call with no locator defaults to the current selection caret.
func (s *Session) resolveTarget(args toolArgs) (model.ContentRange, error) {
	hint := document.Hint{
		Selection: args.Selection,
		Cursor:    args.Cursor,
	}
	if args.ParagraphMinLength != nil {
		minLength := *args.ParagraphMinLength
		if minLength <= 0 {
			minLength = s.paragraphMinLength
		}
		hint.Predicate = &document.ParagraphPredicate{MinLength: minLength}
	}
	if hint.Empty() {
		at := s.doc.Selection().From
		hint.Cursor = &at
	}
	return s.resolver.Resolve(s.doc, hint)
}

// Verify Session implements the applier contract
var _ stream.ToolApplier = (*Session)(nil)
