package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/yonglu/tripweaver/internal/agent"
	"github.com/yonglu/tripweaver/internal/session"
)

// chatTheme holds the color scheme for the chat display.
type chatTheme struct {
	User      lipgloss.Color
	Assistant lipgloss.Color
	Tool      lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
}

var defaultChatTheme = chatTheme{
	User:      lipgloss.Color("#00D787"), // green
	Assistant: lipgloss.Color("#5FAFD7"), // light blue
	Tool:      lipgloss.Color("#AF87FF"), // purple
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
}

func (t chatTheme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t chatTheme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Assistant).Bold(true)
}

func (t chatTheme) toolStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Tool)
}

func (t chatTheme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func (t chatTheme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// agentEventMsg carries one loop event into the bubbletea update cycle.
type agentEventMsg struct {
	event agent.Event
}

// turnDoneMsg signals that the current turn terminated.
type turnDoneMsg struct {
	answer string
	err    error
}

// chatModel is the bubbletea model for the chat session.
type chatModel struct {
	ctx        context.Context
	controller *session.Controller
	identity   session.Identity

	textarea textarea.Model
	spinner  spinner.Model
	theme    chatTheme

	transcript []string // rendered blocks
	streaming  strings.Builder
	waiting    bool

	events <-chan agent.Event
	done   <-chan turnDoneMsg

	width  int
	height int
}

func newChatModel(ctx context.Context, controller *session.Controller, identity session.Identity) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.SetHeight(2)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := chatModel{
		ctx:        ctx,
		controller: controller,
		identity:   identity,
		textarea:   ta,
		spinner:    sp,
		theme:      defaultChatTheme,
		width:      80,
		height:     24,
	}

	// Seed the transcript with the greeting already in history.
	for _, msg := range controller.History(identity) {
		m.transcript = append(m.transcript, m.renderMessage(msg.Role, msg.Content))
	}
	return m
}

// Init returns the initial command.
func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 2)
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			if !m.waiting {
				m = m.switchIdentity()
			}
			return m, nil

		case "enter":
			if m.waiting {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.transcript = append(m.transcript, m.renderMessage(agent.RoleUser, input))
			return m.startTurn(input)
		}

	case agentEventMsg:
		m = m.applyEvent(msg.event)
		return m, m.waitForEvent()

	case turnDoneMsg:
		m.waiting = false
		m.streaming.Reset()
		if msg.err != nil {
			m.transcript = append(m.transcript, m.theme.errorStyle().Render(fmt.Sprintf("error: %v", msg.err)))
		} else {
			m.transcript = append(m.transcript, m.renderMessage(agent.RoleAssistant, msg.answer))
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.waiting {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// startTurn launches the agent loop in the background and begins draining
// its event stream.
func (m chatModel) startTurn(input string) (tea.Model, tea.Cmd) {
	events := make(chan agent.Event, 64)
	done := make(chan turnDoneMsg, 1)

	controller := m.controller
	identity := m.identity
	ctx := m.ctx

	go func() {
		answer, err := controller.Submit(ctx, identity, input, func(ev agent.Event) {
			events <- ev
		})
		close(events)
		done <- turnDoneMsg{answer: answer, err: err}
	}()

	m.waiting = true
	m.events = events
	m.done = done
	return m, tea.Batch(m.waitForEvent(), m.spinner.Tick)
}

// waitForEvent blocks (in a command goroutine) on the next loop event,
// falling through to the terminal result once the stream closes.
func (m chatModel) waitForEvent() tea.Cmd {
	events := m.events
	done := m.done
	return func() tea.Msg {
		if ev, ok := <-events; ok {
			return agentEventMsg{event: ev}
		}
		return <-done
	}
}

// applyEvent folds one loop event into the display state.
func (m chatModel) applyEvent(ev agent.Event) chatModel {
	switch e := ev.(type) {
	case agent.AnswerFragment:
		m.streaming.WriteString(e.Text)

	case agent.ThinkingNote:
		// Intermediate reasoning already streamed as fragments; clear the
		// in-progress buffer so it is not mistaken for the answer.
		m.streaming.Reset()

	case agent.ToolCallAnnounced:
		m.transcript = append(m.transcript,
			m.theme.toolStyle().Render(fmt.Sprintf("⚙ %s %s", e.Tool, truncateLine(e.Args, 80))))
		m.streaming.Reset()

	case agent.ToolResultPreview:
		style := m.theme.toolStyle()
		if e.IsError {
			style = m.theme.errorStyle()
		}
		m.transcript = append(m.transcript,
			style.Render(fmt.Sprintf("  ↳ %s", truncateLine(e.Preview, 120))))
	}
	return m
}

func (m chatModel) switchIdentity() chatModel {
	if m.identity == session.IdentityExplorer {
		m.identity = session.IdentityPlanner
	} else {
		m.identity = session.IdentityExplorer
	}

	m.transcript = m.transcript[:0]
	for _, msg := range m.controller.History(m.identity) {
		m.transcript = append(m.transcript, m.renderMessage(msg.Role, msg.Content))
	}
	return m
}

// View renders the chat display.
func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	var b strings.Builder

	title := fmt.Sprintf(" tripweaver · %s ", m.identity)
	b.WriteString(m.theme.assistantStyle().Render(title))
	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render(" Tab: switch agent · Enter: send · Esc: quit "))
	b.WriteString("\n\n")

	body := strings.Join(m.transcript, "\n")
	if m.waiting {
		inProgress := m.streaming.String()
		if inProgress != "" {
			body += "\n" + wrap(inProgress, m.width-2)
		}
		body += "\n" + m.spinner.View() + m.theme.hintStyle().Render(" thinking...")
	}

	// Keep the tail that fits above the input area.
	lines := strings.Split(body, "\n")
	avail := m.height - 8
	if avail > 0 && len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(m.textarea.View())
	return b.String()
}

func (m chatModel) renderMessage(role, content string) string {
	label := m.theme.assistantStyle().Render(string(m.identity) + ":")
	if role == agent.RoleUser {
		label = m.theme.userStyle().Render("you:")
	}
	return label + " " + wrap(content, m.width-2)
}

func wrap(s string, width int) string {
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func truncateLine(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// runChatTUI runs the full-screen chat interface.
func runChatTUI(ctx context.Context, controller *session.Controller, identity session.Identity) error {
	model := newChatModel(ctx, controller, identity)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
