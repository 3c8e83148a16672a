// Package places provides a client for the Google Places Nearby Search API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Status is the API-level status of a Nearby Search response. The API reports
// errors in-band with HTTP 200, so callers must branch on this field.
type Status string

const (
	StatusOK          Status = "OK"
	StatusZeroResults Status = "ZERO_RESULTS"
)

// Client performs Google Places Nearby Search operations.
type Client interface {
	// NearbySearch fetches a single page of nearby results.
	NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error)
}

// NearbySearchRequest holds the parameters for one Nearby Search page.
type NearbySearchRequest struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Type         string
	Keyword      string // optional keyword scope
	PageToken    string // continuation token from a previous page
}

// NearbySearchResponse is one page of Nearby Search results.
type NearbySearchResponse struct {
	Status        Status  `json:"status"`
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
	ErrorMessage  string  `json:"error_message"`
}

// Place is a single place record. Rating and UserRatingsTotal are declared as
// any because the provider omits them for unrated places and has been observed
// returning non-numeric values; the search engine normalizes them.
type Place struct {
	Name             string `json:"name"`
	Vicinity         string `json:"vicinity"`
	Rating           any    `json:"rating"`
	UserRatingsTotal any    `json:"user_ratings_total"`
	PlaceID          string `json:"place_id"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places Nearby Search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) NearbySearch(ctx context.Context, r NearbySearchRequest) (*NearbySearchResponse, error) {
	params := url.Values{
		"key":      {c.apiKey},
		"location": {fmt.Sprintf("%g,%g", r.Latitude, r.Longitude)},
		"radius":   {fmt.Sprintf("%d", r.RadiusMeters)},
		"type":     {r.Type},
	}
	if r.Keyword != "" {
		params.Set("keyword", r.Keyword)
	}
	if r.PageToken != "" {
		params.Set("pagetoken", r.PageToken)
	}

	reqURL := c.baseURL + "/nearbysearch/json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result NearbySearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}

	return &result, nil
}
