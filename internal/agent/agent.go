// Package agent implements the tool-calling conversation loop behind the
// travel assistant: a Think -> Act -> Observe state machine that feeds tool
// results back to the model until it produces a final answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/yonglu/tripweaver/internal/llm"
)

// ErrLoopExhausted reports that the iteration cap was hit before the model
// produced a terminal answer. The accompanying answer text is still
// user-presentable.
var ErrLoopExhausted = errors.New("agent: iteration cap reached")

// DefaultMaxIterations bounds the Think/Act loop per turn.
const DefaultMaxIterations = 100

// Role values for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Agent drives one conversational identity: a system prompt, a tool set
// and the per-conversation policy state.
type Agent struct {
	name          string
	model         *llm.Model
	toolbox       *Toolbox
	policy        *Policy
	systemPrompt  string
	tools         []llms.Tool
	maxIterations int
	logger        *slog.Logger
}

// NewExplorer creates the exploration agent (web search + geocoding).
func NewExplorer(model *llm.Model, toolbox *Toolbox, maxIterations int, logger *slog.Logger) *Agent {
	return newAgent("explorer", model, toolbox, explorerPrompt, ExplorerTools(), maxIterations, logger)
}

// NewPlanner creates the itinerary planner (geocoding + routing + map).
func NewPlanner(model *llm.Model, toolbox *Toolbox, maxIterations int, logger *slog.Logger) *Agent {
	return newAgent("planner", model, toolbox, plannerPrompt, PlannerTools(), maxIterations, logger)
}

func newAgent(name string, model *llm.Model, toolbox *Toolbox, prompt string, tools []llms.Tool, maxIterations int, logger *slog.Logger) *Agent {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		name:          name,
		model:         model,
		toolbox:       toolbox,
		policy:        NewPolicy(),
		systemPrompt:  prompt,
		tools:         tools,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Name returns the agent identity name.
func (a *Agent) Name() string {
	return a.name
}

// Run executes one user turn: history plus the new input go to the model;
// requested tool calls are executed and observed until the model emits an
// answer without tool calls, or the iteration cap is hit.
//
// Tool failures are non-fatal: they are fed back as structured results for
// the policy to recover from. Only a completion-endpoint failure errors
// the turn.
func (a *Agent) Run(ctx context.Context, history []Message, input string, emit func(Event)) (string, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	turnID := uuid.NewString()
	log := a.logger.With("agent", a.name, "turn", turnID)
	log.Info("turn started", "history_len", len(history))

	msgs := a.buildContext(history, input)

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		var streamed strings.Builder
		streamFn := func(_ context.Context, chunk []byte) error {
			streamed.Write(chunk)
			emit(AnswerFragment{Text: string(chunk)})
			return nil
		}

		// Think
		resp, err := a.model.Chat(ctx, msgs, a.tools, streamFn)
		if err != nil {
			log.Error("completion endpoint failed", "iteration", iteration, "error", err)
			return "", fmt.Errorf("completion endpoint: %w", err)
		}

		choice := resp.Choices[0]

		// Terminal: no further tool calls requested.
		if len(choice.ToolCalls) == 0 {
			answer := choice.Content
			if answer == "" {
				answer = streamed.String()
			}
			log.Info("turn completed", "iterations", iteration, "answer_len", len(answer))
			return answer, nil
		}

		if choice.Content != "" {
			emit(ThinkingNote{Text: choice.Content})
		}

		// Record the assistant's tool request in the working context.
		assistantParts := make([]llms.ContentPart, 0, len(choice.ToolCalls)+1)
		if choice.Content != "" {
			assistantParts = append(assistantParts, llms.TextContent{Text: choice.Content})
		}
		for _, tc := range choice.ToolCalls {
			assistantParts = append(assistantParts, tc)
		}
		msgs = append(msgs, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: assistantParts})

		// Act + Observe
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			emit(ToolCallAnnounced{Tool: tc.FunctionCall.Name, Args: tc.FunctionCall.Arguments})
			log.Info("tool call", "iteration", iteration, "tool", tc.FunctionCall.Name)

			result := a.toolbox.Execute(ctx, a.policy, ToolName(tc.FunctionCall.Name), tc.FunctionCall.Arguments)
			if result.IsError {
				log.Warn("tool returned failure", "tool", tc.FunctionCall.Name, "result", truncate(result.Content, 120))
			}
			emit(ToolResultPreview{
				Tool:    tc.FunctionCall.Name,
				Preview: truncate(result.Content, previewLimit),
				IsError: result.IsError,
			})

			msgs = append(msgs, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       tc.FunctionCall.Name,
						Content:    result.Content,
					},
				},
			})
		}
	}

	log.Warn("iteration cap reached", "cap", a.maxIterations)
	answer := "I'm sorry - I couldn't finish working this out within a reasonable number of steps. " +
		"Could you simplify the request or provide more detail so I can try again?"
	return answer, ErrLoopExhausted
}

// buildContext assembles the model context: system prompt, prior
// conversation, then the latest user input.
func (a *Agent) buildContext(history []Message, input string) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(history)+2)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, a.systemPrompt))

	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}

	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, input))
	return msgs
}
