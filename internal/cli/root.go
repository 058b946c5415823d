// Package cli provides the command-line interface for tripweaver.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yonglu/tripweaver/internal/amap"
	"github.com/yonglu/tripweaver/internal/config"
	"github.com/yonglu/tripweaver/internal/search"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Loaded in PersistentPreRunE
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tripweaver",
	Short: "Conversational travel planning assistant",
	Long: `Tripweaver is a conversational travel-planning assistant: an Explorer
agent for discovering destinations and a Planner agent for building
minute-by-minute itineraries, both grounded in real geocoding, routing
and web-search data.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config validation for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		// The chat TUI sets up its own file-only logger.
		if cmd.Name() != "chat" {
			logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
			slog.SetDefault(logger)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// newAmapClient builds the geocode/route adapter from config.
func newAmapClient() *amap.Client {
	return amap.New(cfg.AmapAPIKey,
		amap.WithBaseURL(cfg.AmapBaseURL),
		amap.WithLogger(logger),
	)
}

// newSearchClient builds the web search adapter from config.
func newSearchClient() *search.Client {
	return search.New(cfg.TavilyAPIKey, search.WithLogger(logger))
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(searchCmd)
}
