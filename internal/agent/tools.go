package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yonglu/tripweaver/internal/amap"
	"github.com/yonglu/tripweaver/internal/maprender"
	"github.com/yonglu/tripweaver/internal/search"
)

// ToolName identifies one of the fixed tools. The set is closed: the loop
// dispatches on the tag, there is no open-ended registry.
type ToolName string

const (
	ToolGeocode   ToolName = "search_place_info"
	ToolRoute     ToolName = "get_route_info"
	ToolSearch    ToolName = "tavily_search"
	ToolRenderMap ToolName = "generate_map_visualization"
)

// GeocodeArgs are the arguments for the geocode tool.
type GeocodeArgs struct {
	PlaceName string `json:"place_name"`
	City      string `json:"city"`
}

// RouteArgs are the arguments for the route tool. Origin and destination
// must be "lon,lat" coordinate pairs from a prior geocode call.
type RouteArgs struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	City        string `json:"city"`
	Mode        string `json:"mode"`
}

// SearchArgs are the arguments for the web search tool.
type SearchArgs struct {
	Query string `json:"query"`
}

// RenderMapArgs are the arguments for the map rendering tool. DailyPlans is
// the JSON array of day plans; models sometimes pass it double-encoded as a
// JSON string, which is tolerated.
type RenderMapArgs struct {
	DailyPlans json.RawMessage `json:"daily_plans"`
}

// Toolbox holds the adapter instances the tools dispatch to. Constructed
// once at process start and injected explicitly.
type Toolbox struct {
	Amap     *amap.Client
	Search   *search.Client
	MapFile  string
	Logger   *slog.Logger
}

// ToolResult is the outcome of one tool invocation. Failures are results,
// not errors: they flow back into the model's context so the policy can
// decide how to recover.
type ToolResult struct {
	Content string
	IsError bool
}

func errorResult(msg, hint string) ToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return ToolResult{Content: text, IsError: true}
}

func textResult(text string) ToolResult {
	return ToolResult{Content: text}
}

// Execute dispatches one tool call by tag. Adapter errors never escape:
// they are folded into error results the model can see and react to.
func (tb *Toolbox) Execute(ctx context.Context, policy *Policy, name ToolName, argsJSON string) ToolResult {
	switch name {
	case ToolGeocode:
		var args GeocodeArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return errorResult("Invalid arguments for search_place_info", err.Error())
		}
		return tb.geocode(ctx, policy, args)

	case ToolRoute:
		var args RouteArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return errorResult("Invalid arguments for get_route_info", err.Error())
		}
		return tb.route(ctx, policy, args)

	case ToolSearch:
		var args SearchArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return errorResult("Invalid arguments for tavily_search", err.Error())
		}
		return tb.webSearch(ctx, args)

	case ToolRenderMap:
		var args RenderMapArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return errorResult("Invalid arguments for generate_map_visualization", err.Error())
		}
		return tb.renderMap(args)

	default:
		return errorResult(fmt.Sprintf("Unknown tool %q", name), "Use one of the declared tools")
	}
}

func (tb *Toolbox) geocode(ctx context.Context, policy *Policy, args GeocodeArgs) ToolResult {
	if args.PlaceName == "" {
		return errorResult("place_name cannot be empty", "")
	}

	place, err := tb.Amap.Geocode(ctx, args.PlaceName, args.City)
	if errors.Is(err, amap.ErrNotFound) {
		return errorResult(
			fmt.Sprintf("No usable coordinates found for %q in %q", args.PlaceName, args.City),
			"Pause all further tool calls and ask the user to clarify this place",
		)
	}
	if err != nil {
		tb.Logger.Error("geocode failed", "place", args.PlaceName, "error", err)
		return errorResult(
			fmt.Sprintf("Lookup for %q failed", args.PlaceName),
			"Pause all further tool calls and ask the user to clarify this place",
		)
	}

	policy.ObserveGeocode(place)

	payload, _ := json.Marshal(place)
	return textResult(string(payload))
}

func (tb *Toolbox) route(ctx context.Context, policy *Policy, args RouteArgs) ToolResult {
	if args.Mode == "" {
		args.Mode = amap.ModeTransit
	}

	// Ordering invariant: both endpoints must come from a successful
	// geocode in this conversation.
	if err := policy.AllowRoute(args.Origin, args.Destination); err != nil {
		return errorResult(err.Error(),
			"Call search_place_info for this place first and use the returned location value")
	}

	seg, err := tb.Amap.Route(ctx, args.Origin, args.Destination, args.City, args.Mode)
	if errors.Is(err, amap.ErrNotFound) {
		return errorResult(
			fmt.Sprintf("No %s route found between %s and %s", args.Mode, args.Origin, args.Destination),
			"Try a different mode or confirm the locations with the user",
		)
	}
	if err != nil {
		tb.Logger.Error("route failed", "origin", args.Origin, "destination", args.Destination, "error", err)
		return errorResult("Route lookup failed", "Try again or confirm the locations with the user")
	}

	payload, _ := json.Marshal(seg)
	return textResult(string(payload))
}

// webSearch folds transport failures into a single error-marker record so
// the model sees them in-band and can decide how to proceed.
func (tb *Toolbox) webSearch(ctx context.Context, args SearchArgs) ToolResult {
	if args.Query == "" {
		return errorResult("query cannot be empty", "")
	}

	results, err := tb.Search.Search(ctx, args.Query)
	if err != nil {
		tb.Logger.Error("web search failed", "query", args.Query, "error", err)
		marker, _ := json.Marshal([]map[string]string{
			{"error": fmt.Sprintf("search failed: %v", err)},
		})
		return ToolResult{Content: string(marker)}
	}

	payload, _ := json.Marshal(results)
	return textResult(string(payload))
}

func (tb *Toolbox) renderMap(args RenderMapArgs) ToolResult {
	raw := args.DailyPlans

	// Tolerate double-encoding: a JSON string containing the array.
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = json.RawMessage(asString)
	}

	var plans []maprender.DayPlan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return errorResult("daily_plans is not a valid day plan array", err.Error())
	}

	if err := maprender.WriteFile(plans, tb.MapFile); err != nil {
		return errorResult(fmt.Sprintf("Map generation failed: %v", err), "")
	}

	file := tb.MapFile
	if file == "" {
		file = maprender.DefaultFilename
	}
	return textResult(fmt.Sprintf("Map generated and saved as %s. Open it in a browser to view the trip.", file))
}
