// Package maprender turns day plans into a self-contained Leaflet HTML map:
// one marker per spot, one colored polyline per route leg, colors cycling
// per day.
package maprender

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/yonglu/tripweaver/internal/amap"
)

// DayPlan is the transient per-day input for map rendering. It is
// constructed from prior geocode and route results and never persisted.
type DayPlan struct {
	Day    int                `json:"day"`
	Spots  []amap.Place       `json:"spots"`
	Routes []amap.RouteSegment `json:"routes"`
}

// DefaultFilename is where WriteFile persists the artifact unless
// configured otherwise.
const DefaultFilename = "trip_map.html"

// palette cycles by day index.
var palette = []string{"blue", "green", "purple", "orange", "darkred", "salmon", "beige"}

type marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Name  string  `json:"name"`
	Day   int     `json:"day"`
	Color string  `json:"color"`
}

type line struct {
	Color  string       `json:"color"`
	Points [][2]float64 `json:"points"` // (lat, lon) order for Leaflet
}

type mapData struct {
	CenterLat float64  `json:"centerLat"`
	CenterLon float64  `json:"centerLon"`
	Markers   []marker `json:"markers"`
	Lines     []line   `json:"lines"`
}

// Render produces the HTML document for the given plans. Fails with a
// descriptive error when the input is empty or the first spot carries no
// usable location; malformed polyline tokens are skipped silently.
func Render(plans []DayPlan) (string, error) {
	if len(plans) == 0 {
		return "", fmt.Errorf("no route data, cannot render map")
	}
	if len(plans[0].Spots) == 0 {
		return "", fmt.Errorf("day %d has no spots, cannot render map", plans[0].Day)
	}

	centerLon, centerLat, err := amap.ParseLocation(plans[0].Spots[0].Location)
	if err != nil {
		return "", fmt.Errorf("first spot has no usable location: %w", err)
	}

	data := mapData{
		CenterLat: centerLat,
		CenterLon: centerLon,
	}

	for i, plan := range plans {
		color := palette[i%len(palette)]

		for _, spot := range plan.Spots {
			if spot.Location == "" {
				return "", fmt.Errorf("spot %q on day %d is missing a location", spot.Name, plan.Day)
			}
			lon, lat, err := amap.ParseLocation(spot.Location)
			if err != nil {
				return "", fmt.Errorf("spot %q on day %d: %w", spot.Name, plan.Day, err)
			}
			data.Markers = append(data.Markers, marker{
				Lat:   lat,
				Lon:   lon,
				Name:  spot.Name,
				Day:   plan.Day,
				Color: color,
			})
		}

		for _, route := range plan.Routes {
			points := decodePolyline(route.Polyline)
			if len(points) > 0 {
				data.Lines = append(data.Lines, line{Color: color, Points: points})
			}
		}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal map data: %w", err)
	}

	var buf strings.Builder
	if err := pageTemplate.Execute(&buf, template.JS(payload)); err != nil {
		return "", fmt.Errorf("render map template: %w", err)
	}
	return buf.String(), nil
}

// WriteFile renders the plans and persists the artifact. Existing files are
// overwritten; nothing is versioned or cleaned up.
func WriteFile(plans []DayPlan, path string) error {
	if path == "" {
		path = DefaultFilename
	}
	html, err := Render(plans)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	return nil
}

// decodePolyline splits a ";"-delimited polyline into (lat, lon) pairs,
// skipping malformed tokens.
func decodePolyline(polyline string) [][2]float64 {
	var points [][2]float64
	for _, token := range strings.Split(polyline, ";") {
		if token == "" {
			continue
		}
		lon, lat, err := amap.ParseLocation(token)
		if err != nil {
			continue
		}
		points = append(points, [2]float64{lat, lon})
	}
	return points
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Trip Map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var data = {{.}};
var map = L.map('map').setView([data.centerLat, data.centerLon], 12);
L.tileLayer('https://webrd01.is.autonavi.com/appmaptile?lang=zh_cn&size=1&scale=1&style=8&x={x}&y={y}&z={z}', {
  attribution: 'Amap'
}).addTo(map);
(data.markers || []).forEach(function (m) {
  L.marker([m.lat, m.lon])
    .addTo(map)
    .bindPopup('<strong>' + m.name + '</strong><br>Day ' + m.day)
    .bindTooltip(m.name);
});
(data.lines || []).forEach(function (l) {
  L.polyline(l.points, { color: l.color, weight: 5, opacity: 0.8 }).addTo(map);
});
</script>
</body>
</html>
`))
