package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a web search the way the explorer agent does",
	Long: `Run a Tavily web search with the same profile the explorer agent uses
(advanced depth, 5 results).

Example:
  tripweaver search "best one-day itinerary in Dalian"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	client := newSearchClient()

	results, err := client.Search(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("[%d] %s\n    %s\n", i+1, r.Title, r.URL)
		content := r.Content
		if len(content) > 150 {
			content = content[:150] + "..."
		}
		fmt.Printf("    %s\n", content)
	}
	return nil
}
