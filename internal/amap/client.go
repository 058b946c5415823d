// Package amap provides typed adapters over the Amap (高德) REST API:
// POI lookup for geocoding and transit/walking/driving route planning.
package amap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound indicates the upstream returned no usable candidate: no POI
// with parsable coordinates, or no route. Callers treat it as a policy
// signal (ask the user), never as a crash.
var ErrNotFound = errors.New("amap: not found")

// DefaultBaseURL is the production Amap REST endpoint.
const DefaultBaseURL = "https://restapi.amap.com/v3"

// Client calls the Amap REST API.
type Client struct {
	key        string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point this at httptest).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an Amap client with the given API key.
func New(key string, opts ...Option) *Client {
	c := &Client{
		key:     key,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Place is a point of interest with resolved coordinates.
// Location is the raw "lon,lat" string as returned by the API.
type Place struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Address  string `json:"address,omitempty"`
}

// ParseLocation splits a "lon,lat" location string into decimals.
func ParseLocation(s string) (lon, lat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed location %q", s)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed longitude in %q: %w", s, err)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed latitude in %q: %w", s, err)
	}
	return lon, lat, nil
}

// inputTipsResponse mirrors /assistant/inputtips. The location field is a
// string for real POIs but an empty JSON array for bare district tips, so
// it is decoded as RawMessage and inspected per tip.
type inputTipsResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Tips   []struct {
		Name     string          `json:"name"`
		Location json.RawMessage `json:"location"`
		Address  json.RawMessage `json:"address"`
		District string          `json:"district"`
	} `json:"tips"`
}

// Geocode resolves a place name within a city to a Place with coordinates.
// The first tip carrying a parsable "lon,lat" location wins. Returns
// ErrNotFound when no tip qualifies.
func (c *Client) Geocode(ctx context.Context, placeName, city string) (Place, error) {
	params := url.Values{}
	params.Set("key", c.key)
	params.Set("keywords", placeName)
	params.Set("city", city)
	params.Set("datatype", "poi")

	var resp inputTipsResponse
	if err := c.get(ctx, "/assistant/inputtips", params, &resp); err != nil {
		return Place{}, err
	}

	if resp.Status != "1" {
		c.logger.Warn("geocode rejected by upstream", "place", placeName, "city", city, "info", resp.Info)
		return Place{}, ErrNotFound
	}

	for _, tip := range resp.Tips {
		loc, ok := rawString(tip.Location)
		if !ok || !strings.Contains(loc, ",") {
			continue
		}
		if _, _, err := ParseLocation(loc); err != nil {
			continue
		}

		name := tip.Name
		if name == "" {
			name = placeName
		}
		addr, ok := rawString(tip.Address)
		if !ok || addr == "" {
			addr = tip.District
		}

		c.logger.Info("geocode resolved", "place", placeName, "city", city, "location", loc)
		return Place{Name: name, Location: loc, Address: addr}, nil
	}

	c.logger.Warn("geocode found no usable coordinates", "place", placeName, "city", city)
	return Place{}, ErrNotFound
}

// get issues a GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("amap request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("amap error: %s - %s", resp.Status, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// rawString decodes a RawMessage that may be a string or something else
// (Amap sends [] for missing addresses).
func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
