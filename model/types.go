// Package model provides domain types shared across packages.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContentRange is a half-open [From, To) offset range into document content.
// To >= From always holds after Clamp.
type ContentRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// NewRange creates a range, swapping bounds if they arrive reversed.
func NewRange(from, to int) ContentRange {
	if to < from {
		from, to = to, from
	}
	return ContentRange{From: from, To: to}
}

// Caret creates a zero-width range at the given offset.
func Caret(at int) ContentRange {
	return ContentRange{From: at, To: at}
}

// Clamp restricts the range to [0, docLen] and repairs inverted bounds.
func (r ContentRange) Clamp(docLen int) ContentRange {
	if docLen < 0 {
		docLen = 0
	}
	if r.From < 0 {
		r.From = 0
	}
	if r.From > docLen {
		r.From = docLen
	}
	if r.To < r.From {
		r.To = r.From
	}
	if r.To > docLen {
		r.To = docLen
	}
	return r
}

// Len returns the number of bytes covered by the range.
func (r ContentRange) Len() int {
	return r.To - r.From
}

// IsCaret returns true for a zero-width range.
func (r ContentRange) IsCaret() bool {
	return r.From == r.To
}

// String returns the canonical "[from,to)" representation.
func (r ContentRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.From, r.To)
}

// OperationKind classifies a tracked mutation.
type OperationKind int

const (
	KindAddition OperationKind = iota
	KindRemoval
	KindReplacement
)

// String returns the string representation of the operation kind.
func (k OperationKind) String() string {
	switch k {
	case KindAddition:
		return "addition"
	case KindRemoval:
		return "removal"
	case KindReplacement:
		return "replacement"
	default:
		return "unknown"
	}
}

// OperationStatus tracks the review lifecycle of an operation.
// Pending is the only non-terminal status.
type OperationStatus int

const (
	StatusPending OperationStatus = iota
	StatusAccepted
	StatusRejected
)

// String returns the string representation of the operation status.
func (s OperationStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal returns true once the operation has been resolved.
func (s OperationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Operation is one pending or resolved AI mutation against a document.
//
// BeforeText always equals the document content at Range immediately before
// the mutation was applied; it is the rollback and diff baseline. For
// additions Range is the post-mutation range of the inserted text.
type Operation struct {
	ID         string          `json:"id"`
	Kind       OperationKind   `json:"kind"`
	Range      ContentRange    `json:"range"`
	BeforeText string          `json:"before_text"`
	AfterText  string          `json:"after_text"`
	Status     OperationStatus `json:"status"`
	CreatedAt  int64           `json:"created_at"`
}

// StageKind identifies one streamed unit of the agent protocol.
type StageKind int

const (
	StagePlanning StageKind = iota
	StageReasoning
	StageToolUsed
	StageToolResult
	StageSummary
	StageError
	StageDone
)

// String returns the string representation of the stage kind.
func (k StageKind) String() string {
	switch k {
	case StagePlanning:
		return "planning"
	case StageReasoning:
		return "reasoning"
	case StageToolUsed:
		return "tool_used"
	case StageToolResult:
		return "tool_result"
	case StageSummary:
		return "summary"
	case StageError:
		return "error"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal returns true for the stage kinds that end a stream.
func (k StageKind) Terminal() bool {
	return k == StageSummary || k == StageError || k == StageDone
}

// ToolInfo carries tool metadata on ToolUsed and ToolResult stages.
// Arguments are present on ToolUsed; Result and Success on ToolResult.
type ToolInfo struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    string          `json:"result,omitempty"`
	Success   bool            `json:"success"`
}

// AgentStage is one event in the agent's streamed protocol. Stages for a
// single prompt arrive strictly ordered and end with exactly one of
// Summary, Error, or Done.
type AgentStage struct {
	Kind      StageKind `json:"stage"`
	Content   string    `json:"content"`
	Tool      *ToolInfo `json:"tool,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStage creates a stage stamped with the current time.
func NewStage(kind StageKind, content string) AgentStage {
	return AgentStage{Kind: kind, Content: content, Timestamp: time.Now()}
}

// NewToolStage creates a ToolUsed or ToolResult stage.
func NewToolStage(kind StageKind, info ToolInfo) AgentStage {
	return AgentStage{Kind: kind, Tool: &info, Timestamp: time.Now()}
}

// ToolExecution is a recorded tool invocation assembled from a
// ToolUsed/ToolResult stage pair. OperationID, AffectedRange, BeforeText,
// and AfterText are filled in once the execution has been applied to the
// live document; the texts are the operation's captured snapshots, taken
// at apply time, so they stay valid as later edits shift offsets.
type ToolExecution struct {
	ToolName      string          `json:"tool_name"`
	Arguments     json.RawMessage `json:"arguments"`
	Result        string          `json:"result"`
	Success       bool            `json:"success"`
	OperationID   string          `json:"operation_id,omitempty"`
	AffectedRange *ContentRange   `json:"affected_range,omitempty"`
	BeforeText    string          `json:"before_text,omitempty"`
	AfterText     string          `json:"after_text,omitempty"`
}

// Applied returns true once the execution has touched the document.
func (e ToolExecution) Applied() bool {
	return e.OperationID != "" && e.AffectedRange != nil
}

// DocumentSnapshot is the full document content at one instant. Immutable
// once captured; the rollback target and diff baseline for a batch.
type DocumentSnapshot struct {
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	TakenAt    time.Time `json:"taken_at"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleError     ChatRole = "error"
)

// ChatMessage is one entry in a session's transcript.
type ChatMessage struct {
	Role    ChatRole  `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// UserMessage creates a user chat message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content, SentAt: time.Now()}
}

// AssistantMessage creates an assistant chat message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content, SentAt: time.Now()}
}

// ErrorMessage creates a user-facing error chat message.
func ErrorMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleError, Content: content, SentAt: time.Now()}
}
