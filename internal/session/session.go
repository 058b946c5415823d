// Package session owns per-agent conversation history and dispatches user
// turns to the right agent, forwarding incremental events to the UI.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yonglu/tripweaver/internal/agent"
)

// Identity selects which agent a turn is addressed to.
type Identity string

const (
	IdentityExplorer Identity = "explorer"
	IdentityPlanner  Identity = "planner"
)

// Conversation is the append-only message history for one agent identity.
// Lifecycle is the process lifetime; messages are immutable once appended.
type Conversation struct {
	messages []agent.Message
}

// Append adds a message to the history.
func (c *Conversation) Append(role, content string) {
	c.messages = append(c.messages, agent.Message{Role: role, Content: content})
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []agent.Message {
	out := make([]agent.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Controller holds one conversation per agent identity and runs one turn
// at a time. History is mutated only here, strictly after the loop
// produces a terminal result, so single-flight needs no locking.
type Controller struct {
	agents map[Identity]*agent.Agent
	convs  map[Identity]*Conversation
	logger *slog.Logger
}

// NewController wires the two agents and seeds each conversation with its
// greeting.
func NewController(explorer, planner *agent.Agent, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	explorerConv := &Conversation{}
	explorerConv.Append(agent.RoleAssistant, agent.ExplorerGreeting)

	plannerConv := &Conversation{}
	plannerConv.Append(agent.RoleAssistant, agent.PlannerGreeting)

	return &Controller{
		agents: map[Identity]*agent.Agent{
			IdentityExplorer: explorer,
			IdentityPlanner:  planner,
		},
		convs: map[Identity]*Conversation{
			IdentityExplorer: explorerConv,
			IdentityPlanner:  plannerConv,
		},
		logger: logger,
	}
}

// History returns a copy of the conversation for an identity.
func (c *Controller) History(id Identity) []agent.Message {
	conv, ok := c.convs[id]
	if !ok {
		return nil
	}
	return conv.Messages()
}

// Submit runs one user turn against the selected agent. Events are
// forwarded to emit as they arrive; the assembled answer is appended to
// the history together with the user message once the turn terminates.
func (c *Controller) Submit(ctx context.Context, id Identity, input string, emit func(agent.Event)) (string, error) {
	ag, ok := c.agents[id]
	if !ok {
		return "", fmt.Errorf("unknown agent identity %q", id)
	}
	conv := c.convs[id]

	answer, err := ag.Run(ctx, conv.Messages(), input, emit)
	switch {
	case errors.Is(err, agent.ErrLoopExhausted):
		// Incomplete result: the answer is the user-facing message and
		// the partial progress still lands in history.
		c.logger.Warn("turn hit iteration cap", "identity", id)
	case err != nil:
		c.logger.Error("turn failed", "identity", id, "error", err)
		answer = "I'm sorry - I couldn't reach the assistant service just now. Please try again in a moment."
	}

	conv.Append(agent.RoleUser, input)
	conv.Append(agent.RoleAssistant, answer)
	return answer, nil
}
