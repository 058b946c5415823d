package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yonglu/tripweaver/internal/amap"
)

var placeCity string

var placeCmd = &cobra.Command{
	Use:   "place <name>",
	Short: "Resolve a place name to coordinates",
	Long: `Resolve a place name to its official name, address and "lon,lat"
coordinates using the Amap POI lookup. Useful for checking what the
agents will see for a given place.

Examples:
  tripweaver place "星海广场" --city 大连
  tripweaver place "Oriental Pearl Tower" --city Shanghai`,
	Args: cobra.ExactArgs(1),
	RunE: runPlace,
}

func init() {
	placeCmd.Flags().StringVarP(&placeCity, "city", "c", "", "city to search within (required)")
	_ = placeCmd.MarkFlagRequired("city")
}

func runPlace(cmd *cobra.Command, args []string) error {
	client := newAmapClient()

	place, err := client.Geocode(context.Background(), args[0], placeCity)
	if errors.Is(err, amap.ErrNotFound) {
		fmt.Printf("No usable coordinates found for %q in %q.\n", args[0], placeCity)
		return nil
	}
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}

	fmt.Printf("Name:     %s\n", place.Name)
	fmt.Printf("Location: %s\n", place.Location)
	if place.Address != "" {
		fmt.Printf("Address:  %s\n", place.Address)
	}
	return nil
}
