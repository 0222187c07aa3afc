package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result represents a single TMDB search match.
type Result struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	OriginalLang  string  `json:"original_language"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	MediaType     string  `json:"media_type"`
	Popularity    float64 `json:"popularity"`
	VoteCount     int64   `json:"vote_count"`
}

// DisplayTitle returns the localized title for movies or name for shows.
func (r Result) DisplayTitle() string {
	if title := strings.TrimSpace(r.Title); title != "" {
		return title
	}
	return strings.TrimSpace(r.Name)
}

// Year returns the release (or first air) year, or 0 when unknown.
func (r Result) Year() int {
	date := strings.TrimSpace(r.ReleaseDate)
	if date == "" {
		date = strings.TrimSpace(r.FirstAirDate)
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Searcher defines the TMDB search operations used by the planners.
type Searcher interface {
	SearchMovie(ctx context.Context, query string, year int) (*Response, error)
	SearchTV(ctx context.Context, query string, year int) (*Response, error)
	SearchMulti(ctx context.Context, query string, year int) (*Response, error)
}

// Client provides access to the TMDB API for searches.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMovie searches movies, optionally restricted to a primary release year.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*Response, error) {
	return c.search(ctx, "movie", query, "primary_release_year", year)
}

// SearchTV searches shows, optionally restricted to a first-air year.
func (c *Client) SearchTV(ctx context.Context, query string, year int) (*Response, error) {
	return c.search(ctx, "tv", query, "first_air_date_year", year)
}

// SearchMulti searches every media type at once.
func (c *Client) SearchMulti(ctx context.Context, query string, year int) (*Response, error) {
	return c.search(ctx, "multi", query, "year", year)
}

func (c *Client) search(ctx context.Context, kind, query, yearParam string, year int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search/" + kind)
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if year > 0 {
		params.Set(yearParam, strconv.Itoa(year))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb %s search returned %d (latency=%v)", kind, resp.StatusCode, latency)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}
	if kind != "multi" {
		for i := range payload.Results {
			payload.Results[i].MediaType = kind
		}
	}
	return &payload, nil
}
