package agent_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/yonglu/tripweaver/internal/agent"
	"github.com/yonglu/tripweaver/internal/amap"
	"github.com/yonglu/tripweaver/internal/llm"
	"github.com/yonglu/tripweaver/internal/search"
)

// scriptedModel replays a fixed sequence of responses and records the
// context it was called with. When the script runs out, the last response
// repeats. Non-empty stream chunks are pushed through the caller's
// streaming func before the response is returned.
type scriptedModel struct {
	responses []*llms.ContentResponse
	stream    []string
	calls     int
	contexts  [][]llms.MessageContent
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.contexts = append(m.contexts, messages)

	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	if opts.StreamingFunc != nil {
		for _, chunk := range m.stream {
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}

	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++
	return m.responses[idx], nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func textResponse(text string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}
}

func toolCallResponse(id, tool, args string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   id,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      tool,
					Arguments: args,
				},
			}},
		}},
	}
}

// testEnv wires a toolbox against fake Amap/Tavily upstreams and counts
// route requests.
type testEnv struct {
	toolbox    *agent.Toolbox
	routeHits  *atomic.Int64
	geoQueries *[]string
}

func newTestEnv(t *testing.T, tipsJSON string) testEnv {
	t.Helper()

	var routeHits atomic.Int64
	var geoQueries []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/assistant/inputtips":
			geoQueries = append(geoQueries, r.URL.Query().Get("keywords"))
			w.Write([]byte(tipsJSON))
		case strings.HasPrefix(r.URL.Path, "/direction/"):
			routeHits.Add(1)
			w.Write([]byte(`{"status": "1", "route": {"transits": [{"duration": "600", "distance": "2000", "segments": []}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	searchServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	t.Cleanup(searchServer.Close)

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	return testEnv{
		toolbox: &agent.Toolbox{
			Amap:   amap.New("k", amap.WithBaseURL(server.URL), amap.WithLogger(logger)),
			Search: search.New("k", search.WithEndpoint(searchServer.URL), search.WithLogger(logger)),
			Logger: logger,
		},
		routeHits:  &routeHits,
		geoQueries: &geoQueries,
	}
}

const emptyTips = `{"status": "1", "tips": []}`

const xinghaiTips = `{
	"status": "1",
	"tips": [{"name": "星海假日酒店", "location": "121.595,38.872", "address": "沙河口区"}]
}`

func collectEvents() (func(agent.Event), *[]agent.Event) {
	var events []agent.Event
	return func(ev agent.Event) { events = append(events, ev) }, &events
}

func TestGeocodeFailureSuspendsToolsAndAsksUser(t *testing.T) {
	env := newTestEnv(t, emptyTips)

	clarification := "I couldn't locate Bangchui Island. Which district is it in?"
	model := &scriptedModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", "search_place_info", `{"place_name":"棒棰岛","city":"大连"}`),
		textResponse(clarification),
	}}

	planner := agent.NewPlanner(llm.NewModelFromLLM(model, "scripted"), env.toolbox, 10, nil)

	emit, events := collectEvents()
	answer, err := planner.Run(context.Background(), nil, "Plan my Dalian trip around Bangchui Island", emit)
	require.NoError(t, err)

	// The turn terminates with the clarification question, and no routing
	// tool call ever happens.
	assert.Equal(t, clarification, answer)
	assert.Equal(t, int64(0), env.routeHits.Load())

	// The failure was observed as a structured result, not an exception.
	var sawFailure bool
	for _, ev := range *events {
		if preview, ok := ev.(agent.ToolResultPreview); ok && preview.IsError {
			sawFailure = true
			assert.Contains(t, preview.Preview, "No usable coordinates")
		}
	}
	assert.True(t, sawFailure)

	// The second Think step's context carries the failure result.
	require.Len(t, model.contexts, 2)
	assert.True(t, contextContains(model.contexts[1], "No usable coordinates"))
}

func TestClarifiedTurnRetriesGeocodeFirst(t *testing.T) {
	env := newTestEnv(t, xinghaiTips)

	model := &scriptedModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", "search_place_info", `{"place_name":"中山区 棒棰岛","city":"大连"}`),
		textResponse("Found it - resuming the plan."),
	}}

	planner := agent.NewPlanner(llm.NewModelFromLLM(model, "scripted"), env.toolbox, 10, nil)

	history := []agent.Message{
		{Role: agent.RoleUser, Content: "I want to visit 棒棰岛"},
		{Role: agent.RoleAssistant, Content: "I couldn't locate 棒棰岛. Which district is it in?"},
	}

	emit, events := collectEvents()
	_, err := planner.Run(context.Background(), history, "It's in 中山区", emit)
	require.NoError(t, err)

	// The very first tool call of the turn is the merged-query retry.
	require.NotEmpty(t, *events)
	first, ok := (*events)[0].(agent.ToolCallAnnounced)
	require.True(t, ok)
	assert.Equal(t, "search_place_info", first.Tool)
	assert.Contains(t, first.Args, "中山区")
	assert.Contains(t, first.Args, "棒棰岛")

	require.NotEmpty(t, *env.geoQueries)
	assert.Equal(t, "中山区 棒棰岛", (*env.geoQueries)[0])
}

func TestIterationCapBoundsThinkInvocations(t *testing.T) {
	env := newTestEnv(t, xinghaiTips)

	// The model never stops asking for tools.
	model := &scriptedModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", "search_place_info", `{"place_name":"星海广场","city":"大连"}`),
	}}

	const maxIterations = 3
	planner := agent.NewPlanner(llm.NewModelFromLLM(model, "scripted"), env.toolbox, maxIterations, nil)

	answer, err := planner.Run(context.Background(), nil, "plan everything", nil)
	assert.ErrorIs(t, err, agent.ErrLoopExhausted)
	assert.Contains(t, answer, "couldn't finish")
	assert.LessOrEqual(t, model.calls, maxIterations+1)
}

func TestRouteWithoutGeocodeIsRejected(t *testing.T) {
	env := newTestEnv(t, xinghaiTips)

	model := &scriptedModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", "get_route_info",
			`{"origin":"121.40,31.20","destination":"121.50,31.30","city":"大连","mode":"transit"}`),
		textResponse("Let me resolve those places first."),
	}}

	planner := agent.NewPlanner(llm.NewModelFromLLM(model, "scripted"), env.toolbox, 10, nil)

	emit, events := collectEvents()
	_, err := planner.Run(context.Background(), nil, "route between these", emit)
	require.NoError(t, err)

	// The upstream was never contacted; the model got a corrective result.
	assert.Equal(t, int64(0), env.routeHits.Load())

	var sawRejection bool
	for _, ev := range *events {
		if preview, ok := ev.(agent.ToolResultPreview); ok && preview.IsError {
			sawRejection = true
			assert.Contains(t, preview.Preview, "not resolved")
		}
	}
	assert.True(t, sawRejection)
}

func TestRouteAllowedAfterGeocode(t *testing.T) {
	env := newTestEnv(t, xinghaiTips)

	model := &scriptedModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", "search_place_info", `{"place_name":"星海假日酒店","city":"大连"}`),
		toolCallResponse("call_2", "get_route_info",
			`{"origin":"121.595,38.872","destination":"121.595,38.872","city":"大连","mode":"transit"}`),
		textResponse("Here is the leg."),
	}}

	planner := agent.NewPlanner(llm.NewModelFromLLM(model, "scripted"), env.toolbox, 10, nil)

	_, err := planner.Run(context.Background(), nil, "plan", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.routeHits.Load())
}

func TestStreamedFragmentsAreEmitted(t *testing.T) {
	env := newTestEnv(t, xinghaiTips)

	// The terminal response carries no content of its own; the answer must
	// be assembled from the streamed chunks.
	model := &scriptedModel{
		responses: []*llms.ContentResponse{textResponse("")},
		stream:    []string{"Dalian ", "has ", "great ", "seafood."},
	}

	explorer := agent.NewExplorer(llm.NewModelFromLLM(model, "scripted"), env.toolbox, 10, nil)

	emit, events := collectEvents()
	answer, err := explorer.Run(context.Background(), nil, "hi", emit)
	require.NoError(t, err)
	assert.Equal(t, "Dalian has great seafood.", answer)

	var fragments []string
	for _, ev := range *events {
		if frag, ok := ev.(agent.AnswerFragment); ok {
			fragments = append(fragments, frag.Text)
		}
	}
	assert.Equal(t, []string{"Dalian ", "has ", "great ", "seafood."}, fragments)
}

// contextContains reports whether any message part in the context carries
// the given substring.
func contextContains(messages []llms.MessageContent, substr string) bool {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				if strings.Contains(p.Text, substr) {
					return true
				}
			case llms.ToolCallResponse:
				if strings.Contains(p.Content, substr) {
					return true
				}
			}
		}
	}
	return false
}
