// Package stream aggregates the agent's asynchronous stage protocol into a
// single coherent narrative plus a structured list of tool executions.
//
// Information Hiding:
// - Stage ordering and pairing rules hidden
// - Narrative formatting hidden
// - Error classification hidden
package stream

import (
	"context"

	"go.uber.org/zap"

	"github.com/richinex/redline/model"
)

// State is the aggregator's per-prompt lifecycle.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateErrored
	StateAborted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ToolApplier applies one tool execution to the live document, filling in
// OperationID and AffectedRange on success. Implemented by the session.
type ToolApplier interface {
	ApplyTool(ctx context.Context, exec *model.ToolExecution) error
}

// Result is the outcome of consuming one agent stream.
type Result struct {
	State      State
	Message    string // final narrative text; empty when errored
	ErrorText  string // friendly error message; set only when errored
	Executions []model.ToolExecution
	ToolsUsed  int
}

// Aggregator consumes an ordered stage sequence for one prompt. It is
// single-use: create one per prompt. Stages are processed strictly in
// arrival order by the one goroutine running Consume; no two stages are
// ever processed concurrently.
type Aggregator struct {
	state     State
	narrative *Narrative
	pending   *model.ToolExecution
	result    Result
	logger    *zap.Logger
}

// NewAggregator creates an idle aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		state:     StateIdle,
		narrative: NewNarrative(),
		logger:    logger,
	}
}

// State returns the current lifecycle state.
func (a *Aggregator) State() State {
	return a.state
}

// Consume drains the stage channel, folding stages into the narrative and
// applying tool executions through apply (which may be nil to aggregate
// without touching a document).
//
// Cancellation is cooperative: ctx is checked between stages only, so a
// stage already being applied completes before the abort takes effect.
// Operations applied before an abort stay pending and remain resolvable.
func (a *Aggregator) Consume(ctx context.Context, stages <-chan model.AgentStage, apply ToolApplier) Result {
	a.state = StateStreaming

	for {
		select {
		case <-ctx.Done():
			return a.abort()
		case stage, ok := <-stages:
			if !ok {
				// Producer stopped without a terminal stage; treat as done.
				return a.complete()
			}
			if done := a.process(ctx, stage, apply); done {
				return a.result
			}
		}
	}
}

// process handles one stage. Returns true when the stream is finished.
func (a *Aggregator) process(ctx context.Context, stage model.AgentStage, apply ToolApplier) bool {
	switch stage.Kind {
	case model.StagePlanning:
		a.narrative.AddSection("Planning", stage.Content)
	case model.StageReasoning:
		a.narrative.AddSection("Reasoning", stage.Content)
	case model.StageToolUsed:
		a.onToolUsed(stage)
	case model.StageToolResult:
		a.onToolResult(ctx, stage, apply)
	case model.StageSummary:
		a.narrative.Finish(stage.Content)
		a.complete()
		return true
	case model.StageError:
		a.fail(stage.Content)
		return true
	case model.StageDone:
		a.complete()
		return true
	default:
		a.logger.Warn("unknown stage kind ignored", zap.Int("kind", int(stage.Kind)))
	}
	return false
}

// onToolUsed stages a placeholder execution and a running indicator.
func (a *Aggregator) onToolUsed(stage model.AgentStage) {
	if stage.Tool == nil {
		a.logger.Warn("tool_used stage without tool metadata")
		return
	}
	a.result.ToolsUsed++
	a.pending = &model.ToolExecution{
		ToolName:  stage.Tool.Name,
		Arguments: stage.Tool.Arguments,
	}
	a.narrative.AddToolLine("- " + stage.Tool.Name + ": running")
}

// onToolResult fills the placeholder and applies the execution to the
// document. Raw tool output never reaches the narrative; only the outcome
// marker does.
func (a *Aggregator) onToolResult(ctx context.Context, stage model.AgentStage, apply ToolApplier) {
	if a.pending == nil {
		a.logger.Warn("tool_result without matching tool_used, dropped")
		return
	}

	exec := a.pending
	a.pending = nil

	if stage.Tool != nil {
		exec.Result = stage.Tool.Result
		exec.Success = stage.Tool.Success
	}

	if exec.Success && apply != nil {
		if err := apply.ApplyTool(ctx, exec); err != nil {
			a.logger.Warn("tool execution could not be applied",
				zap.String("tool", exec.ToolName),
				zap.Error(err))
			exec.Success = false
		}
	}

	marker := "done"
	if !exec.Success {
		marker = "failed"
	}
	a.narrative.UpdateLastToolLine("- " + exec.ToolName + ": " + marker)

	a.result.Executions = append(a.result.Executions, *exec)
}

// complete marks the stream finished and snapshots the narrative.
func (a *Aggregator) complete() Result {
	a.state = StateCompleted
	a.result.State = StateCompleted
	a.result.Message = a.narrative.Render()
	return a.result
}

// fail discards the narrative and replaces it with one friendly error
// message; the raw error text is never surfaced.
func (a *Aggregator) fail(raw string) Result {
	category := Classify(raw)
	a.logger.Warn("agent stream failed",
		zap.String("category", category.String()),
		zap.String("raw", raw))

	a.state = StateErrored
	a.result.State = StateErrored
	a.result.Message = ""
	a.result.ErrorText = category.Message()
	return a.result
}

// abort stops consumption. Already-applied operations stay pending; the
// registry is untouched.
func (a *Aggregator) abort() Result {
	a.logger.Info("agent stream aborted",
		zap.Int("tools_used", a.result.ToolsUsed),
		zap.Int("executions_applied", len(a.result.Executions)))

	a.state = StateAborted
	a.result.State = StateAborted
	a.result.Message = a.narrative.Render()
	return a.result
}
