package kroger

import "fmt"

// ConfigurationError reports a required credential missing at construction.
// It is fatal: callers must not retry or defer it to request time.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required credential %s", e.Field)
}

// AuthenticationError reports a non-success status from the token endpoint.
// The response body is carried verbatim for diagnosis.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// UpstreamRequestError reports a non-success status from a resource endpoint
// (locations or products).
type UpstreamRequestError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *UpstreamRequestError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// NotFoundError reports a location search that returned zero results.
// It is distinct from UpstreamRequestError: the request itself succeeded.
type NotFoundError struct {
	ZipCode string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no locations found for zip code %s", e.ZipCode)
}
