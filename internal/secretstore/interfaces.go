package secretstore

import "context"

// Store is a single-secret backend. Read fails when no secret is present
// rather than returning the empty string; Write fails on read-only backends.
type Store interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, secret string) error
}
