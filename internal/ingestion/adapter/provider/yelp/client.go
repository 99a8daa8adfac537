package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"restaurant-analytics/internal/ingestion/domain/model"
	"restaurant-analytics/internal/ingestion/domain/repository"
	apperrors "restaurant-analytics/internal/shared/errors"
)

// DefaultBaseURL is the Yelp Fusion business search endpoint.
const DefaultBaseURL = "https://api.yelp.com/v3/businesses/search"

const (
	searchTerm    = "restaurants"
	sortBy        = "best_match"
	clientTimeout = 30 * time.Second
)

// Client talks to the Yelp Fusion search API with bearer-token auth.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint. Used by tests to
// target a stub server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a Yelp search client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse mirrors the relevant parts of the Yelp search payload.
// Businesses stay raw so each record can be decoded twice: once into the
// typed model and once into the preserved raw map.
type searchResponse struct {
	Total      int               `json:"total"`
	Businesses []json.RawMessage `json:"businesses"`
}

// SearchRestaurants fetches one page of restaurant listings for a city.
func (c *Client) SearchRestaurants(ctx context.Context, city string, limit, offset int) (*repository.SearchPage, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewConfigurationError("YELP_API_KEY is not set").
			WithCause(apperrors.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("term", searchTerm)
	params.Set("location", city)
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("sort_by", sortBy)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewProviderError("failed to build search request").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError(fmt.Sprintf("search request for %q failed", city)).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.NewProviderError(fmt.Sprintf("search for %q returned status %d: %s", city, resp.StatusCode, string(body))).
			WithCause(apperrors.ErrProviderStatus).
			WithDetail("status_code", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewProviderError("failed to parse search response").WithCause(err)
	}

	page := &repository.SearchPage{
		Total:      payload.Total,
		Businesses: make([]model.Business, 0, len(payload.Businesses)),
	}
	for _, raw := range payload.Businesses {
		business, err := decodeBusiness(raw)
		if err != nil {
			return nil, apperrors.NewProviderError("failed to decode business in search response").WithCause(err)
		}
		page.Businesses = append(page.Businesses, *business)
	}

	return page, nil
}

// decodeBusiness unmarshals one provider record into the typed model and
// attaches the full payload as the raw map.
func decodeBusiness(raw json.RawMessage) (*model.Business, error) {
	var business model.Business
	if err := json.Unmarshal(raw, &business); err != nil {
		return nil, err
	}

	var rawFields map[string]interface{}
	if err := json.Unmarshal(raw, &rawFields); err != nil {
		return nil, err
	}
	business.Raw = rawFields

	return &business, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 50 {
		return 50
	}
	return limit
}
