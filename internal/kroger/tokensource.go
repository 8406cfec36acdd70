package kroger

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenSourceOption configures a TokenSource.
type TokenSourceOption func(*TokenSource)

// WithTokenHTTPClient sets the HTTP client used for token exchanges.
// If not provided, a client with a 30 second timeout is used.
func WithTokenHTTPClient(client *http.Client) TokenSourceOption {
	return func(ts *TokenSource) {
		ts.client = client
	}
}

// WithTokenURL overrides the token endpoint URL.
func WithTokenURL(tokenURL string) TokenSourceOption {
	return func(ts *TokenSource) {
		ts.tokenURL = tokenURL
	}
}

// WithTokenScope overrides the requested OAuth scope.
func WithTokenScope(scope string) TokenSourceOption {
	return func(ts *TokenSource) {
		ts.scope = scope
	}
}

// withClock overrides the time source, for expiry tests.
func withClock(now func() time.Time) TokenSourceOption {
	return func(ts *TokenSource) {
		ts.now = now
	}
}

// TokenSource owns a single client-credentials access token: lazily fetched,
// cached in memory, and replaced when expired or absent. It implements
// oauth2.TokenSource so it can drive an oauth2.Transport.
//
// A token is reused only while its expiry is strictly in the future; there is
// no clock-skew margin, so a token expiring exactly now is refreshed. The
// check-then-refresh sequence runs under one mutex: concurrent callers on a
// shared client observe at most one in-flight refresh.
type TokenSource struct {
	creds    Credentials
	tokenURL string
	scope    string
	client   *http.Client
	now      func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// Compile-time check to ensure TokenSource implements oauth2.TokenSource
var _ oauth2.TokenSource = (*TokenSource)(nil)

// NewTokenSource creates a TokenSource for the given credentials.
// No I/O is performed until the first Token call.
func NewTokenSource(creds Credentials, opts ...TokenSourceOption) (*TokenSource, error) {
	if creds.ClientID == "" {
		return nil, &ConfigurationError{Field: "client_id"}
	}
	if creds.ClientSecret == "" {
		return nil, &ConfigurationError{Field: "client_secret"}
	}

	ts := &TokenSource{
		creds: creds,
		// Bounds token refresh; oauth2.TokenSource has no context parameter.
		client:   &http.Client{Timeout: 30 * time.Second},
		tokenURL: DefaultBaseURL + tokenPath,
		scope:    ScopeProductCompact,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

// Token returns a valid access token, performing a client-credentials
// exchange if the cached token is absent or expired. A failed exchange
// leaves the cached token untouched.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.accessToken != "" && ts.expiresAt.After(ts.now()) {
		return ts.cachedLocked(), nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {ts.creds.ClientID},
		"client_secret": {ts.creds.ClientSecret},
		"scope":         {ts.scope},
	}

	resp, err := ts.client.PostForm(ts.tokenURL, form)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	ts.accessToken = payload.AccessToken
	ts.expiresAt = ts.now().Add(time.Duration(payload.ExpiresIn) * time.Second)

	return ts.cachedLocked(), nil
}

// cachedLocked builds an oauth2.Token from cached state. Callers must hold mu.
func (ts *TokenSource) cachedLocked() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: ts.accessToken,
		TokenType:   "Bearer",
		Expiry:      ts.expiresAt,
	}
}
