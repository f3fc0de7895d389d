// Staged editing loop: think with the LLM, emit tool calls, repeat.
//
// Information Hiding:
// - Prompt construction hidden
// - LLM communication hidden
// - Decision parsing hidden
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	jsonutil "github.com/richinex/redline/internal/json"
	"github.com/richinex/redline/llm"
	"github.com/richinex/redline/model"
	"github.com/richinex/redline/tools"
)

// Service runs the editing loop for one prompt at a time and emits the
// staged protocol: zero or more Planning/Reasoning/ToolUsed/ToolResult
// stages followed by exactly one terminal stage (Summary, Error, or Done).
// The stage channel is always closed after the terminal stage.
type Service struct {
	config    Config
	llmClient *llm.Client
	registry  *tools.Registry
	logger    *zap.Logger
}

// New creates an agent service over the given provider and tool catalog.
func New(provider llm.Provider, registry *tools.Registry, config Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		config:    config.normalized(),
		llmClient: llm.NewClient(provider),
		registry:  registry,
		logger:    logger,
	}
}

// Run starts the loop for one prompt. Stages arrive on the returned
// channel; the caller consumes until it is closed. Cancellation stops the
// loop between stages.
func (s *Service) Run(ctx context.Context, prompt string, snapshot model.DocumentSnapshot, history []model.ChatMessage) <-chan model.AgentStage {
	stages := make(chan model.AgentStage)
	go s.loop(ctx, prompt, snapshot, history, stages)
	return stages
}

func (s *Service) loop(ctx context.Context, prompt string, snapshot model.DocumentSnapshot, history []model.ChatMessage, stages chan<- model.AgentStage) {
	defer close(stages)

	conversation := s.seedConversation(prompt, snapshot, history)

	for iteration := 0; iteration < s.config.MaxStages; iteration++ {
		if ctx.Err() != nil {
			return
		}

		response, usage, err := s.llmClient.ChatWithUsage(ctx, conversation)
		if err != nil {
			s.emit(ctx, stages, model.NewStage(model.StageError, err.Error()))
			return
		}
		if usage != nil {
			s.logger.Debug("llm call",
				zap.String("agent", s.config.Name),
				zap.Int("iteration", iteration),
				zap.Uint32("total_tokens", usage.TotalTokens))
		}

		decision := s.parseDecision(response)

		if decision.Thought != "" {
			kind := model.StageReasoning
			if iteration == 0 {
				kind = model.StagePlanning
			}
			if !s.emit(ctx, stages, model.NewStage(kind, decision.Thought)) {
				return
			}
		}

		if decision.IsFinal {
			summary := decision.Thought
			if decision.Summary != nil {
				summary = *decision.Summary
			}
			s.emit(ctx, stages, model.NewStage(model.StageSummary, summary))
			return
		}

		if decision.Action == nil {
			// No action and not final: end the turn rather than loop on
			// empty decisions.
			s.emit(ctx, stages, model.NewStage(model.StageDone, ""))
			return
		}

		observation := s.dispatch(ctx, stages, decision)
		if observation == "" {
			// Stage emission failed (cancelled mid-dispatch).
			return
		}

		conversation = append(conversation,
			llm.AssistantMessage(marshalDecision(decision)),
			llm.UserMessage(fmt.Sprintf(
				"Observation: %s\n\nIs the revision complete? If yes, set is_final=true and provide a summary.",
				observation)),
		)
	}

	// Out of iterations; the stream still gets its terminal stage.
	s.emit(ctx, stages, model.NewStage(model.StageDone, ""))
}

// dispatch validates one tool call and emits its ToolUsed/ToolResult pair.
// Returns the observation text for the conversation, or "" when emission
// was cancelled.
func (s *Service) dispatch(ctx context.Context, stages chan<- model.AgentStage, decision Decision) string {
	action := decision.Action

	if !s.emit(ctx, stages, model.NewToolStage(model.StageToolUsed, model.ToolInfo{
		Name:      action.Tool,
		Arguments: action.Input,
	})) {
		return ""
	}

	result := model.ToolInfo{Name: action.Tool, Arguments: action.Input}

	tool, exists := s.registry.Get(action.Tool)
	switch {
	case !exists:
		result.Success = false
		result.Result = fmt.Sprintf("unknown tool %q; available: %s",
			action.Tool, strings.Join(s.registry.Names(), ", "))
	default:
		if err := tool.Validate(action.Input); err != nil {
			result.Success = false
			result.Result = err.Error()
		} else {
			result.Success = true
			result.Result = "change staged for review"
		}
	}

	if !result.Success {
		s.logger.Warn("tool call rejected",
			zap.String("tool", action.Tool),
			zap.String("reason", result.Result))
	}

	if !s.emit(ctx, stages, model.NewToolStage(model.StageToolResult, result)) {
		return ""
	}
	return result.Result
}

// seedConversation builds the system prompt plus prior transcript.
func (s *Service) seedConversation(prompt string, snapshot model.DocumentSnapshot, history []model.ChatMessage) []llm.ChatMessage {
	systemPrompt := fmt.Sprintf(
		`%s

Available Tools:
%s

CURRENT DOCUMENT:
---
%s
---

You have a maximum of %d steps.
Respond in this JSON format:
{
  "thought": "your reasoning",
  "action": {"tool": "name", "input": {...}},
  "is_final": false,
  "summary": null
}

When the revision is complete: is_final=true, action=null, provide a short summary of what changed.`,
		s.config.SystemPrompt,
		s.registry.Description(),
		snapshot.Content,
		s.config.MaxStages,
	)

	conversation := []llm.ChatMessage{llm.SystemMessage(systemPrompt)}

	for _, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			conversation = append(conversation, llm.UserMessage(msg.Content))
		case model.RoleAssistant:
			conversation = append(conversation, llm.AssistantMessage(msg.Content))
		}
		// Error messages are UI artifacts, not model context.
	}

	return append(conversation, llm.UserMessage(fmt.Sprintf("Request: %s", prompt)))
}

// parseDecision extracts a Decision from the raw response. Responses that
// carry no parseable JSON are treated as a bare thought.
func (s *Service) parseDecision(response string) Decision {
	extracted, err := jsonutil.ExtractJSON(response)
	if err != nil {
		return Decision{Thought: strings.TrimSpace(response)}
	}

	var decision Decision
	if err := json.Unmarshal([]byte(extracted), &decision); err != nil {
		return Decision{Thought: strings.TrimSpace(response)}
	}
	return decision
}

// marshalDecision re-encodes the decision for the conversation log.
func marshalDecision(decision Decision) string {
	encoded, err := json.Marshal(decision)
	if err != nil {
		return fmt.Sprintf(`{"thought": %q}`, decision.Thought)
	}
	return string(encoded)
}

// emit sends one stage, honoring cancellation. Returns false when the
// context ended before the stage could be delivered.
func (s *Service) emit(ctx context.Context, stages chan<- model.AgentStage, stage model.AgentStage) bool {
	select {
	case stages <- stage:
		return true
	case <-ctx.Done():
		return false
	}
}
