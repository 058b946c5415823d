package maprender_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonglu/tripweaver/internal/amap"
	"github.com/yonglu/tripweaver/internal/maprender"
)

type renderedMarker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Name  string  `json:"name"`
	Day   int     `json:"day"`
	Color string  `json:"color"`
}

type renderedLine struct {
	Color  string       `json:"color"`
	Points [][2]float64 `json:"points"`
}

type renderedData struct {
	CenterLat float64          `json:"centerLat"`
	CenterLon float64          `json:"centerLon"`
	Markers   []renderedMarker `json:"markers"`
	Lines     []renderedLine   `json:"lines"`
}

// extractData pulls the embedded JSON payload back out of the rendered page.
func extractData(t *testing.T, html string) renderedData {
	t.Helper()

	start := strings.Index(html, "var data = ")
	require.GreaterOrEqual(t, start, 0)
	rest := html[start+len("var data = "):]
	end := strings.Index(rest, ";\n")
	require.GreaterOrEqual(t, end, 0)

	var data renderedData
	require.NoError(t, json.Unmarshal([]byte(rest[:end]), &data))
	return data
}

func TestRenderTwoSpotsOneRoute(t *testing.T) {
	plans := []maprender.DayPlan{{
		Day: 1,
		Spots: []amap.Place{
			{Name: "星海广场", Location: "121.4,31.2"},
			{Name: "老虎滩海洋公园", Location: "121.5,31.3"},
		},
		Routes: []amap.RouteSegment{{
			DurationMinutes: 30,
			Polyline:        "121.4,31.2;121.5,31.3",
		}},
	}}

	html, err := maprender.Render(plans)
	require.NoError(t, err)

	data := extractData(t, html)

	// Centered on the first spot of the first day.
	assert.Equal(t, 31.2, data.CenterLat)
	assert.Equal(t, 121.4, data.CenterLon)

	require.Len(t, data.Markers, 2)
	assert.Equal(t, "星海广场", data.Markers[0].Name)
	assert.Equal(t, 1, data.Markers[0].Day)

	// Exactly two decoded points, in (lat, lon) order: input reversed.
	require.Len(t, data.Lines, 1)
	require.Len(t, data.Lines[0].Points, 2)
	assert.Equal(t, [2]float64{31.2, 121.4}, data.Lines[0].Points[0])
	assert.Equal(t, [2]float64{31.3, 121.5}, data.Lines[0].Points[1])
}

func TestRenderPaletteCyclesByDay(t *testing.T) {
	var plans []maprender.DayPlan
	for day := 1; day <= 8; day++ {
		plans = append(plans, maprender.DayPlan{
			Day:   day,
			Spots: []amap.Place{{Name: "spot", Location: "121.4,31.2"}},
		})
	}

	html, err := maprender.Render(plans)
	require.NoError(t, err)

	data := extractData(t, html)
	require.Len(t, data.Markers, 8)
	// Day 8 wraps back to day 1's color.
	assert.Equal(t, data.Markers[0].Color, data.Markers[7].Color)
	assert.NotEqual(t, data.Markers[0].Color, data.Markers[1].Color)
}

func TestRenderSkipsMalformedPolylineTokens(t *testing.T) {
	plans := []maprender.DayPlan{{
		Day:   1,
		Spots: []amap.Place{{Name: "a", Location: "121.4,31.2"}},
		Routes: []amap.RouteSegment{{
			Polyline: "121.4,31.2;garbage;;121.5,31.3",
		}},
	}}

	html, err := maprender.Render(plans)
	require.NoError(t, err)

	data := extractData(t, html)
	require.Len(t, data.Lines, 1)
	assert.Len(t, data.Lines[0].Points, 2)
}

func TestRenderEmptyInput(t *testing.T) {
	_, err := maprender.Render(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route data")
}

func TestRenderMissingSpots(t *testing.T) {
	_, err := maprender.Render([]maprender.DayPlan{{Day: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no spots")
}

func TestRenderMissingLocation(t *testing.T) {
	plans := []maprender.DayPlan{{
		Day: 1,
		Spots: []amap.Place{
			{Name: "a", Location: "121.4,31.2"},
			{Name: "b"},
		},
	}}

	_, err := maprender.Render(plans)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.html")

	plans := []maprender.DayPlan{{
		Day:   1,
		Spots: []amap.Place{{Name: "a", Location: "121.4,31.2"}},
	}}

	require.NoError(t, maprender.WriteFile(plans, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "leaflet")
}
