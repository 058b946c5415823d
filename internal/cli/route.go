package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yonglu/tripweaver/internal/amap"
)

var (
	routeCity string
	routeMode string
)

var routeCmd = &cobra.Command{
	Use:   "route <origin> <destination>",
	Short: "Compute a travel leg between two coordinate pairs",
	Long: `Compute a travel leg between two "lon,lat" coordinate pairs, the same
way the planner agent does. Resolve coordinates first with 'tripweaver place'.

Examples:
  tripweaver route "121.4997,31.2397" "121.5063,31.2451" --city 上海
  tripweaver route "121.44,38.92" "121.67,38.87" --city 大连 --mode walking`,
	Args: cobra.ExactArgs(2),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVarP(&routeCity, "city", "c", "", "city the trip takes place in (required)")
	routeCmd.Flags().StringVarP(&routeMode, "mode", "m", amap.ModeTransit, "travel mode: transit, walking or driving")
	_ = routeCmd.MarkFlagRequired("city")
}

func runRoute(cmd *cobra.Command, args []string) error {
	client := newAmapClient()

	seg, err := client.Route(context.Background(), args[0], args[1], routeCity, routeMode)
	if errors.Is(err, amap.ErrNotFound) {
		fmt.Printf("No %s route found between %s and %s.\n", routeMode, args[0], args[1])
		return nil
	}
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}

	fmt.Printf("Duration: %d min\n", seg.DurationMinutes)
	fmt.Printf("Distance: %d m\n", seg.DistanceMeters)
	if seg.CostYuan > 0 {
		fmt.Printf("Cost:     %.2f CNY\n", seg.CostYuan)
	}
	for i, step := range seg.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
	return nil
}
