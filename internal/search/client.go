// Package search provides a Tavily web-search client used by the explorer
// agent for open-ended discovery queries.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultEndpoint is the production Tavily search endpoint.
const DefaultEndpoint = "https://api.tavily.com/search"

// Results are bounded to a fixed count; the advanced depth profile trades
// latency for content quality.
const (
	maxResults  = 5
	searchDepth = "advanced"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client calls the Tavily search API. A single long-lived client is shared
// across all searches.
type Client struct {
	key        string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint (tests point this at httptest).
func WithEndpoint(u string) Option {
	return func(c *Client) { c.endpoint = u }
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

// New creates a Tavily client with the given API key.
func New(key string, opts ...Option) *Client {
	c := &Client{
		key:      key,
		endpoint: DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs a web search and returns up to 5 results. A transport or
// decode failure is returned as an error; zero upstream hits is a valid
// empty slice. The tool layer folds errors into the single error-marker
// record the model sees.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	reqBody, err := json.Marshal(searchRequest{
		APIKey:      c.key,
		Query:       query,
		SearchDepth: searchDepth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search error: %s - %s", resp.Status, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(sr.Results) == 0 {
		c.logger.Warn("search returned no results", "query", query)
	} else {
		c.logger.Info("search completed", "query", query, "results", len(sr.Results))
	}

	if len(sr.Results) > maxResults {
		sr.Results = sr.Results[:maxResults]
	}
	return sr.Results, nil
}
