package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yonglu/tripweaver/internal/agent"
	"github.com/yonglu/tripweaver/internal/config"
	"github.com/yonglu/tripweaver/internal/llm"
	"github.com/yonglu/tripweaver/internal/session"
)

var chatIdentity string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the explorer or planner agent",
	Long: `Start an interactive chat session. Two agent identities are available:

  explorer   discover destinations, restaurants and sights
  planner    turn confirmed trip details into a timed itinerary

In the full-screen UI, press Tab to switch between them. When stdin is
not a terminal, input is read line by line and output is streamed to
stdout.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatIdentity, "agent", "a", "explorer", "initial agent identity: explorer or planner")
}

func runChat(cmd *cobra.Command, args []string) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

	// In TUI mode stderr logging would corrupt the screen.
	if interactive {
		logger, logCleanup = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
	} else {
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	}

	ctx := context.Background()

	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	toolbox := &agent.Toolbox{
		Amap:    newAmapClient(),
		Search:  newSearchClient(),
		MapFile: cfg.MapOutputFile,
		Logger:  logger,
	}

	explorer := agent.NewExplorer(model, toolbox, cfg.MaxIterations, logger)
	planner := agent.NewPlanner(model, toolbox, cfg.MaxIterations, logger)
	controller := session.NewController(explorer, planner, logger)

	identity, err := parseIdentity(chatIdentity)
	if err != nil {
		return err
	}

	if interactive {
		return runChatTUI(ctx, controller, identity)
	}
	return runChatPlain(ctx, controller, identity)
}

func parseIdentity(s string) (session.Identity, error) {
	switch strings.ToLower(s) {
	case "explorer":
		return session.IdentityExplorer, nil
	case "planner":
		return session.IdentityPlanner, nil
	default:
		return "", fmt.Errorf("unknown agent identity %q (want explorer or planner)", s)
	}
}

// runChatPlain is the non-TTY fallback: read lines, stream fragments to
// stdout. "/explorer" and "/planner" switch identities.
func runChatPlain(ctx context.Context, controller *session.Controller, identity session.Identity) error {
	history := controller.History(identity)
	if len(history) > 0 {
		fmt.Printf("[%s] %s\n", identity, history[len(history)-1].Content)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/explorer":
			identity = session.IdentityExplorer
			fmt.Printf("[switched to %s]\n", identity)
			continue
		case "/planner":
			identity = session.IdentityPlanner
			fmt.Printf("[switched to %s]\n", identity)
			continue
		case "/quit", "/exit":
			return nil
		}

		var streamedAny bool
		answer, err := controller.Submit(ctx, identity, line, func(ev agent.Event) {
			switch e := ev.(type) {
			case agent.AnswerFragment:
				fmt.Print(e.Text)
				streamedAny = true
			case agent.ToolCallAnnounced:
				fmt.Printf("\n[tool] %s %s\n", e.Tool, e.Args)
			case agent.ToolResultPreview:
				status := "ok"
				if e.IsError {
					status = "failed"
				}
				fmt.Printf("[tool %s: %s] %s\n", e.Tool, status, e.Preview)
			}
		})
		if err != nil {
			return err
		}

		if !streamedAny {
			fmt.Print(answer)
		}
		fmt.Println()
	}
	return scanner.Err()
}
