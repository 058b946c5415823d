package amap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Travel modes supported by Route.
const (
	ModeTransit = "transit"
	ModeWalking = "walking"
	ModeDriving = "driving"
)

// RouteSegment is one computed leg between two coordinates.
// Polyline is a ";"-joined list of "lon,lat" tokens in traversal order.
type RouteSegment struct {
	DurationMinutes int      `json:"duration_minutes"`
	DistanceMeters  int      `json:"distance_meters"`
	CostYuan        float64  `json:"cost_yuan,omitempty"`
	Steps           []string `json:"steps"`
	Polyline        string   `json:"polyline"`
}

// Amap serializes numbers as JSON strings ("320"), and occasionally as
// empty arrays when absent. flexString tolerates all of it.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "[]" || s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}

func (f flexString) Int() int {
	n, _ := strconv.Atoi(string(f))
	return n
}

func (f flexString) Float() float64 {
	v, _ := strconv.ParseFloat(string(f), 64)
	return v
}

type stop struct {
	Name string `json:"name"`
}

type busline struct {
	Name          string     `json:"name"`
	DepartureStop stop       `json:"departure_stop"`
	ArrivalStop   stop       `json:"arrival_stop"`
	ViaNum        flexString `json:"via_num"`
	Polyline      string     `json:"polyline"`
}

type segment struct {
	Walking struct {
		Distance flexString `json:"distance"`
		Duration flexString `json:"duration"`
		Polyline string     `json:"polyline"`
	} `json:"walking"`
	Bus struct {
		Buslines []busline `json:"buslines"`
	} `json:"bus"`
}

type transitPlan struct {
	Duration flexString `json:"duration"`
	Distance flexString `json:"distance"`
	Cost     flexString `json:"cost"`
	Segments []segment  `json:"segments"`
}

type pathStep struct {
	Polyline string `json:"polyline"`
}

type path struct {
	Duration flexString `json:"duration"`
	Distance flexString `json:"distance"`
	Steps    []pathStep `json:"steps"`
}

type directionResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Route  struct {
		Transits []transitPlan `json:"transits"`
		Paths    []path        `json:"paths"`
	} `json:"route"`
}

// Route computes a travel leg between two coordinate pairs. Origin and
// destination must be "lon,lat" strings from Geocode; place names are not
// accepted. Returns ErrNotFound when the upstream has no usable route.
func (c *Client) Route(ctx context.Context, origin, destination, city, mode string) (RouteSegment, error) {
	if _, _, err := ParseLocation(origin); err != nil {
		return RouteSegment{}, fmt.Errorf("origin must be a \"lon,lat\" coordinate pair: %w", err)
	}
	if _, _, err := ParseLocation(destination); err != nil {
		return RouteSegment{}, fmt.Errorf("destination must be a \"lon,lat\" coordinate pair: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.key)
	params.Set("origin", origin)
	params.Set("destination", destination)

	var apiPath string
	switch mode {
	case ModeTransit:
		apiPath = "/direction/transit/integrated"
		params.Set("city", city)
	case ModeWalking:
		apiPath = "/direction/walking"
	case ModeDriving:
		apiPath = "/direction/driving"
	default:
		return RouteSegment{}, fmt.Errorf("unsupported travel mode %q", mode)
	}

	var resp directionResponse
	if err := c.get(ctx, apiPath, params, &resp); err != nil {
		return RouteSegment{}, err
	}

	if resp.Status != "1" {
		c.logger.Warn("route rejected by upstream", "mode", mode, "info", resp.Info)
		return RouteSegment{}, ErrNotFound
	}

	var seg RouteSegment
	var ok bool
	switch mode {
	case ModeTransit:
		seg, ok = firstTransit(resp.Route.Transits)
	default:
		seg, ok = firstPath(resp.Route.Paths)
	}
	if !ok {
		c.logger.Warn("route response had no usable plan", "mode", mode, "info", resp.Info)
		return RouteSegment{}, ErrNotFound
	}

	c.logger.Info("route resolved",
		"mode", mode,
		"duration_min", seg.DurationMinutes,
		"distance_m", seg.DistanceMeters,
		"steps", len(seg.Steps),
	)
	return seg, nil
}

// firstTransit flattens the first transit itinerary: walking legs and bus
// legs become human-readable steps, polylines concatenate in traversal order.
func firstTransit(transits []transitPlan) (RouteSegment, bool) {
	if len(transits) == 0 {
		return RouteSegment{}, false
	}
	plan := transits[0]

	var steps []string
	var polylineParts []string

	for _, seg := range plan.Segments {
		if seg.Walking.Distance.Int() > 0 {
			steps = append(steps, fmt.Sprintf("Walk about %d min (%d m)",
				seg.Walking.Duration.Int()/60, seg.Walking.Distance.Int()))
			if seg.Walking.Polyline != "" {
				polylineParts = append(polylineParts, seg.Walking.Polyline)
			}
		}

		for _, bus := range seg.Bus.Buslines {
			steps = append(steps, fmt.Sprintf("Board %s at %s, ride %d stops, alight at %s",
				bus.Name, bus.DepartureStop.Name, bus.ViaNum.Int(), bus.ArrivalStop.Name))
			if bus.Polyline != "" {
				polylineParts = append(polylineParts, bus.Polyline)
			}
		}
	}

	return RouteSegment{
		DurationMinutes: plan.Duration.Int() / 60,
		DistanceMeters:  plan.Distance.Int(),
		CostYuan:        plan.Cost.Float(),
		Steps:           steps,
		Polyline:        strings.Join(polylineParts, ";"),
	}, true
}

// firstPath flattens the first walking/driving path.
func firstPath(paths []path) (RouteSegment, bool) {
	if len(paths) == 0 {
		return RouteSegment{}, false
	}
	p := paths[0]

	var polylineParts []string
	for _, step := range p.Steps {
		if step.Polyline != "" {
			polylineParts = append(polylineParts, step.Polyline)
		}
	}

	return RouteSegment{
		DurationMinutes: p.Duration.Int() / 60,
		DistanceMeters:  p.Distance.Int(),
		Polyline:        strings.Join(polylineParts, ";"),
	}, true
}
