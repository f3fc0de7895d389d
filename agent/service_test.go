package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/richinex/redline/llm"
	"github.com/richinex/redline/model"
	"github.com/richinex/redline/tools"
)

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []string
	calls     int
	err       error
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Chat(_ context.Context, _ []llm.ChatMessage) (llm.LLMResponse, error) {
	if p.err != nil {
		return llm.LLMResponse{}, p.err
	}
	if p.calls >= len(p.responses) {
		return llm.LLMResponse{}, errors.New("script exhausted")
	}
	response := p.responses[p.calls]
	p.calls++
	return llm.LLMResponse{Content: response}, nil
}

func (p *scriptedProvider) ChatWithFormat(ctx context.Context, messages []llm.ChatMessage, _ *llm.ResponseFormat) (llm.LLMResponse, error) {
	return p.Chat(ctx, messages)
}

func (p *scriptedProvider) StreamChat(_ context.Context, _ []llm.ChatMessage, _ chan<- string) (*llm.TokenUsage, error) {
	return nil, errors.New("not implemented")
}

func newService(t *testing.T, provider llm.Provider) *Service {
	t.Helper()
	registry, err := tools.WithEditingTools()
	if err != nil {
		t.Fatalf("failed to build tools: %v", err)
	}
	return New(provider, registry, Config{}, nil)
}

func collect(t *testing.T, stages <-chan model.AgentStage) []model.AgentStage {
	t.Helper()
	var out []model.AgentStage
	for stage := range stages {
		out = append(out, stage)
	}
	return out
}

func snap(content string) model.DocumentSnapshot {
	return model.DocumentSnapshot{DocumentID: "doc-1", Content: content}
}

func TestRunToolThenSummary(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"thought": "I will tighten the opening", "action": {"tool": "replace_content", "input": {"text": "Hi", "selection": {"from": 0, "to": 5}}}, "is_final": false}`,
		`{"thought": "The edit is in place", "action": null, "is_final": true, "summary": "Replaced the greeting"}`,
	}}

	stages := collect(t, newService(t, provider).Run(context.Background(), "tighten it", snap("Hello world"), nil))

	want := []model.StageKind{
		model.StagePlanning,
		model.StageToolUsed,
		model.StageToolResult,
		model.StageReasoning,
		model.StageSummary,
	}
	if len(stages) != len(want) {
		t.Fatalf("expected %d stages, got %d: %+v", len(want), len(stages), stages)
	}
	for i, kind := range want {
		if stages[i].Kind != kind {
			t.Errorf("stage %d: expected %s, got %s", i, kind, stages[i].Kind)
		}
	}

	if stages[1].Tool == nil || stages[1].Tool.Name != "replace_content" {
		t.Errorf("tool_used must carry tool metadata: %+v", stages[1].Tool)
	}
	if stages[2].Tool == nil || !stages[2].Tool.Success {
		t.Errorf("valid tool call must succeed: %+v", stages[2].Tool)
	}
	if stages[4].Content != "Replaced the greeting" {
		t.Errorf("summary content mismatch: %q", stages[4].Content)
	}
}

func TestRunRejectsUnknownTool(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"thought": "trying something odd", "action": {"tool": "launch_rocket", "input": {}}, "is_final": false}`,
		`{"thought": "giving up", "is_final": true, "summary": "No changes made"}`,
	}}

	stages := collect(t, newService(t, provider).Run(context.Background(), "edit", snap("doc"), nil))

	var result *model.ToolInfo
	for _, stage := range stages {
		if stage.Kind == model.StageToolResult {
			result = stage.Tool
		}
	}
	if result == nil {
		t.Fatal("expected a tool_result stage")
	}
	if result.Success {
		t.Error("unknown tool must be rejected")
	}
}

func TestRunRejectsInvalidArguments(t *testing.T) {
	// insert_content without text fails validation.
	provider := &scriptedProvider{responses: []string{
		`{"thought": "inserting", "action": {"tool": "insert_content", "input": {"cursor": 0}}, "is_final": false}`,
		`{"thought": "done", "is_final": true, "summary": "n/a"}`,
	}}

	stages := collect(t, newService(t, provider).Run(context.Background(), "edit", snap("doc"), nil))

	for _, stage := range stages {
		if stage.Kind == model.StageToolResult && stage.Tool.Success {
			t.Error("invalid arguments must not pass validation")
		}
	}
}

func TestRunLLMErrorEmitsErrorStage(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}

	stages := collect(t, newService(t, provider).Run(context.Background(), "edit", snap("doc"), nil))

	if len(stages) != 1 {
		t.Fatalf("expected only the error stage, got %d", len(stages))
	}
	if stages[0].Kind != model.StageError {
		t.Errorf("expected error stage, got %s", stages[0].Kind)
	}
}

func TestRunUnparseableResponseEndsWithDone(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"I think the document is fine as it is.",
	}}

	stages := collect(t, newService(t, provider).Run(context.Background(), "edit", snap("doc"), nil))

	if len(stages) != 2 {
		t.Fatalf("expected planning + done, got %d: %+v", len(stages), stages)
	}
	if stages[0].Kind != model.StagePlanning || stages[1].Kind != model.StageDone {
		t.Errorf("unexpected stage kinds: %s, %s", stages[0].Kind, stages[1].Kind)
	}
}

func TestRunStopsAtMaxStages(t *testing.T) {
	// Always acts, never finishes.
	looping := `{"thought": "more edits", "action": {"tool": "insert_content", "input": {"text": "x", "cursor": 0}}, "is_final": false}`
	provider := &scriptedProvider{responses: []string{
		looping, looping, looping, looping, looping,
	}}

	registry, err := tools.WithEditingTools()
	if err != nil {
		t.Fatalf("failed to build tools: %v", err)
	}
	service := New(provider, registry, Config{MaxStages: 3}, nil)

	stages := collect(t, service.Run(context.Background(), "edit", snap("doc"), nil))

	last := stages[len(stages)-1]
	if last.Kind != model.StageDone {
		t.Errorf("expected terminal done stage, got %s", last.Kind)
	}
	if provider.calls != 3 {
		t.Errorf("expected 3 llm calls, got %d", provider.calls)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{responses: []string{`{"thought": "x", "is_final": true}`}}
	stages := collect(t, newService(t, provider).Run(ctx, "edit", snap("doc"), nil))

	if len(stages) != 0 {
		t.Errorf("cancelled run must emit nothing, got %+v", stages)
	}
}

func TestDecisionSummaryAcceptsJSONValue(t *testing.T) {
	var d Decision
	input := `{"thought": "t", "is_final": true, "summary": {"changed": 2}}`
	if err := d.UnmarshalJSON([]byte(input)); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if d.Summary == nil || *d.Summary == "" {
		t.Error("non-string summary should be stringified")
	}
}
