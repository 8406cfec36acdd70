package kroger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// DefaultSearchLimit caps product search results when the caller does not
// provide a limit. No upper bound is enforced locally; the upstream service
// is the sole enforcer.
const DefaultSearchLimit = 10

// Credentials identifies the application to the Kroger API.
// Sourced once at construction and immutable for the process lifetime.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL       string
	scope         string
	timeout       time.Duration
	baseTransport http.RoundTripper
}

// WithBaseURL overrides the API root, including the token endpoint derived
// from it.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithScope overrides the OAuth scope requested during token exchange.
func WithScope(scope string) ClientOption {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithTimeout bounds each upstream request. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithTransport sets a custom base transport for resource requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.baseTransport = transport
	}
}

// Client issues bearer-authenticated read-only requests against the Kroger
// API. Token acquisition is delegated to a TokenSource behind an
// oauth2.Transport; every operation transparently ensures a valid token
// before the resource call.
//
// A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given credentials.
// Missing credentials are a construction-time error, never deferred to
// request time.
func NewClient(creds Credentials, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		baseURL:       DefaultBaseURL,
		scope:         ScopeProductCompact,
		timeout:       30 * time.Second,
		baseTransport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tokenSource, err := NewTokenSource(creds,
		WithTokenURL(cfg.baseURL+tokenPath),
		WithTokenScope(cfg.scope),
		WithTokenHTTPClient(&http.Client{
			Timeout:   cfg.timeout,
			Transport: cfg.baseTransport,
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: cfg.baseURL,
		httpClient: &http.Client{
			Timeout: cfg.timeout,
			Transport: &oauth2.Transport{
				Source: tokenSource,
				Base:   cfg.baseTransport,
			},
		},
	}, nil
}

// NearestLocation resolves the store nearest to a postal code.
//
// The postal code is not validated locally. The first element of the
// upstream data array is returned unmodified; zero results yield a
// NotFoundError, distinct from a failed request.
func (c *Client) NearestLocation(ctx context.Context, zipCode string) (*Location, error) {
	query := url.Values{"filter.zipCode.near": {zipCode}}

	body, err := c.get(ctx, "locations", query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []Location `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding locations response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, &NotFoundError{ZipCode: zipCode}
	}

	// First-result policy: whatever order the upstream returns, no local ranking.
	return &payload.Data[0], nil
}

// SearchProducts searches products by free-text term, scoped to a store so
// the upstream includes store-specific pricing and availability.
//
// An empty result set is a valid outcome, not an error. limit defaults to
// DefaultSearchLimit when non-positive.
func (c *Client) SearchProducts(ctx context.Context, locationID, term string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := url.Values{
		"filter.term":       {term},
		"filter.limit":      {strconv.Itoa(limit)},
		"filter.locationId": {locationID},
	}

	body, err := c.get(ctx, "products", query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []Product `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding products response: %w", err)
	}

	return payload.Data, nil
}

// get issues a bearer-authenticated GET to a resource endpoint and returns
// the response body. Non-success statuses become UpstreamRequestError.
func (c *Client) get(ctx context.Context, operation string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+operation, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", operation, err)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Token exchange failures surface here via the oauth2 transport;
		// %w keeps AuthenticationError reachable through errors.As.
		return nil, fmt.Errorf("%s request: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamRequestError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}
