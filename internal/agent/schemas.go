package agent

import "github.com/tmc/langchaingo/llms"

// Tool schemas presented to the model. Descriptions carry the invocation
// policy the prompts depend on, mirroring the tool docstrings the original
// agents were tuned against.

var geocodeTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name: string(ToolGeocode),
		Description: "Look up the official name, address and precise \"lon,lat\" coordinates of any place " +
			"(attraction, restaurant, hotel, station, airport). MUST be called for every place mentioned " +
			"before any route planning; route planning depends on the returned location value.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"place_name": map[string]any{
					"type":        "string",
					"description": "Name of the place to look up, e.g. \"Oriental Pearl Tower\"",
				},
				"city": map[string]any{
					"type":        "string",
					"description": "City to search within, e.g. \"Shanghai\"",
				},
			},
			"required": []string{"place_name", "city"},
		},
	},
}

var routeTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name: string(ToolRoute),
		Description: "Compute the real travel route between two points. origin and destination MUST be " +
			"\"lon,lat\" coordinate pairs returned by search_place_info, never place names. Call this for " +
			"every movement from A to B in the itinerary.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"origin": map[string]any{
					"type":        "string",
					"description": "Start coordinates as \"lon,lat\", e.g. \"121.4997,31.2397\"",
				},
				"destination": map[string]any{
					"type":        "string",
					"description": "End coordinates as \"lon,lat\"",
				},
				"city": map[string]any{
					"type":        "string",
					"description": "City the trip takes place in (required for transit)",
				},
				"mode": map[string]any{
					"type":        "string",
					"enum":        []string{"transit", "walking", "driving"},
					"description": "Travel mode, defaults to transit",
				},
			},
			"required": []string{"origin", "destination", "city"},
		},
	},
}

var searchTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name: string(ToolSearch),
		Description: "Web search engine for live information such as \"what is fun to do in X\" or background " +
			"knowledge. First choice when exploring unknown territory. Returns a list of results with " +
			"title, url and content.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Keywords or question to search for",
				},
			},
			"required": []string{"query"},
		},
	},
}

var renderMapTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name: string(ToolRenderMap),
		Description: "Render the finished itinerary as an interactive HTML map. daily_plans is a JSON array " +
			"of {day, spots: [{name, location}], routes: [route results]} built from prior " +
			"search_place_info and get_route_info outputs.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"daily_plans": map[string]any{
					"type":        "string",
					"description": "JSON array of day plans with spots and routes",
				},
			},
			"required": []string{"daily_plans"},
		},
	},
}

// ExplorerTools is the tool set of the exploration agent.
func ExplorerTools() []llms.Tool {
	return []llms.Tool{geocodeTool, searchTool}
}

// PlannerTools is the tool set of the itinerary planner.
func PlannerTools() []llms.Tool {
	return []llms.Tool{geocodeTool, routeTool, renderMapTool}
}
