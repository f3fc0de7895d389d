package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/richinex/redline/model"
)

// recordingApplier records applications and simulates assigned operations.
type recordingApplier struct {
	applied []string
	failOn  string
}

func (r *recordingApplier) ApplyTool(ctx context.Context, exec *model.ToolExecution) error {
	if exec.ToolName == r.failOn {
		return fmt.Errorf("resolution failed for %s", exec.ToolName)
	}
	r.applied = append(r.applied, exec.ToolName)
	exec.OperationID = fmt.Sprintf("op-%d", len(r.applied))
	rng := model.ContentRange{From: 0, To: 5}
	exec.AffectedRange = &rng
	return nil
}

func feed(stages ...model.AgentStage) <-chan model.AgentStage {
	ch := make(chan model.AgentStage, len(stages))
	for _, s := range stages {
		ch <- s
	}
	close(ch)
	return ch
}

func toolPair(name string) []model.AgentStage {
	return []model.AgentStage{
		model.NewToolStage(model.StageToolUsed, model.ToolInfo{
			Name:      name,
			Arguments: json.RawMessage(`{"text":"hi"}`),
		}),
		model.NewToolStage(model.StageToolResult, model.ToolInfo{
			Name:    name,
			Result:  "applied",
			Success: true,
		}),
	}
}

func TestConsumeBuildsSingleNarrative(t *testing.T) {
	a := NewAggregator(nil)

	stages := []model.AgentStage{
		model.NewStage(model.StagePlanning, "figure out what to add"),
		model.NewStage(model.StageReasoning, "the intro is too short"),
	}
	stages = append(stages, toolPair("insert_content")...)
	stages = append(stages, model.NewStage(model.StageSummary, "added an intro"))

	applier := &recordingApplier{}
	res := a.Consume(context.Background(), feed(stages...), applier)

	if res.State != StateCompleted {
		t.Fatalf("expected completed, got %s", res.State)
	}
	if res.ErrorText != "" {
		t.Errorf("unexpected error text: %q", res.ErrorText)
	}
	for _, want := range []string{"Planning", "Reasoning", "insert_content: done", "Complete"} {
		if !strings.Contains(res.Message, want) {
			t.Errorf("narrative missing %q:\n%s", want, res.Message)
		}
	}
	if strings.Contains(res.Message, "applied") {
		t.Error("raw tool output must not reach the narrative")
	}
	if res.ToolsUsed != 1 || len(res.Executions) != 1 {
		t.Errorf("expected 1 tool use, got used=%d executions=%d", res.ToolsUsed, len(res.Executions))
	}
	if !res.Executions[0].Applied() {
		t.Error("expected execution to carry operation id and range")
	}
}

func TestConsumeSummaryWithoutIntermediateStages(t *testing.T) {
	a := NewAggregator(nil)

	res := a.Consume(context.Background(),
		feed(model.NewStage(model.StageSummary, "nothing to change")), nil)

	if res.State != StateCompleted {
		t.Fatalf("expected completed, got %s", res.State)
	}
	if !strings.Contains(res.Message, "nothing to change") {
		t.Errorf("expected summary-only narrative, got %q", res.Message)
	}
}

func TestConsumeDoneProducesNoMessage(t *testing.T) {
	a := NewAggregator(nil)

	res := a.Consume(context.Background(),
		feed(model.NewStage(model.StageDone, "")), nil)

	if res.State != StateCompleted {
		t.Fatalf("expected completed, got %s", res.State)
	}
	if res.Message != "" {
		t.Errorf("done must not produce a message, got %q", res.Message)
	}
}

func TestConsumeErrorDiscardsNarrative(t *testing.T) {
	// Scenario: tool_used followed immediately by error, no tool_result.
	a := NewAggregator(nil)

	stages := []model.AgentStage{
		model.NewStage(model.StagePlanning, "about to edit"),
		model.NewToolStage(model.StageToolUsed, model.ToolInfo{Name: "insert_content"}),
		model.NewStage(model.StageError, "429 too many requests"),
	}

	applier := &recordingApplier{}
	res := a.Consume(context.Background(), feed(stages...), applier)

	if res.State != StateErrored {
		t.Fatalf("expected errored, got %s", res.State)
	}
	if res.Message != "" {
		t.Errorf("narrative must be discarded on error, got %q", res.Message)
	}
	if res.ErrorText != ErrorRateLimited.Message() {
		t.Errorf("expected rate-limit message, got %q", res.ErrorText)
	}
	if strings.Contains(res.ErrorText, "429") {
		t.Error("raw error text must never be shown verbatim")
	}
	if len(applier.applied) != 0 {
		t.Errorf("no executions should have been applied, got %v", applier.applied)
	}
	if len(res.Executions) != 0 {
		t.Errorf("expected zero recorded executions, got %d", len(res.Executions))
	}
}

func TestConsumeFailedApplyMarksExecution(t *testing.T) {
	a := NewAggregator(nil)

	stages := toolPair("remove_content")
	stages = append(stages, model.NewStage(model.StageSummary, "done"))

	applier := &recordingApplier{failOn: "remove_content"}
	res := a.Consume(context.Background(), feed(stages...), applier)

	if res.State != StateCompleted {
		t.Fatalf("expected completed, got %s", res.State)
	}
	if len(res.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(res.Executions))
	}
	if res.Executions[0].Success {
		t.Error("execution whose apply failed must be marked unsuccessful")
	}
	if !strings.Contains(res.Message, "remove_content: failed") {
		t.Errorf("narrative should show failure marker:\n%s", res.Message)
	}
}

func TestConsumeAbortKeepsAppliedExecutions(t *testing.T) {
	// Scenario: abort fired after two of four tool executions applied.
	a := NewAggregator(nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan model.AgentStage)
	go func() {
		for i := 0; i < 2; i++ {
			for _, s := range toolPair(fmt.Sprintf("insert_content_%d", i)) {
				ch <- s
			}
		}
		// Two more executions would follow, but the user aborts first.
		cancel()
	}()

	applier := &recordingApplier{}
	res := a.Consume(ctx, ch, applier)

	if res.State != StateAborted {
		t.Fatalf("expected aborted, got %s", res.State)
	}
	if len(res.Executions) != 2 {
		t.Fatalf("expected 2 applied executions preserved, got %d", len(res.Executions))
	}
	for _, exec := range res.Executions {
		if !exec.Applied() {
			t.Errorf("aborted stream must keep applied execution %s resolvable", exec.ToolName)
		}
	}
}

func TestConsumeProcessesStagesInArrivalOrder(t *testing.T) {
	a := NewAggregator(nil)

	var stages []model.AgentStage
	for i := 0; i < 5; i++ {
		stages = append(stages, toolPair(fmt.Sprintf("insert_content_%d", i))...)
	}
	stages = append(stages, model.NewStage(model.StageSummary, "all done"))

	applier := &recordingApplier{}
	res := a.Consume(context.Background(), feed(stages...), applier)

	if len(res.Executions) != 5 {
		t.Fatalf("expected 5 executions, got %d", len(res.Executions))
	}
	for i, exec := range res.Executions {
		want := fmt.Sprintf("insert_content_%d", i)
		if exec.ToolName != want {
			t.Errorf("execution %d out of order: got %s, want %s", i, exec.ToolName, want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want ErrorCategory
	}{
		{"429 Too Many Requests", ErrorRateLimited},
		{"rate limit exceeded for model", ErrorRateLimited},
		{"quota exhausted", ErrorRateLimited},
		{"dial tcp: connection refused", ErrorConnectivity},
		{"context deadline exceeded (timeout)", ErrorConnectivity},
		{"unexpected EOF", ErrorConnectivity},
		{"invalid response schema", ErrorGeneric},
		{"", ErrorGeneric},
	}

	for _, tt := range tests {
		if got := Classify(tt.raw); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
