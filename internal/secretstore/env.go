package secretstore

import (
	"context"
	"fmt"
	"os"
)

// EnvStore reads the secret from an environment variable. It never writes.
type EnvStore struct {
	envKey string
}

var _ Store = (*EnvStore)(nil)

// NewEnvStore fails when the variable is unset, so a missing secret
// surfaces at startup rather than on the first request.
func NewEnvStore(envKey string) (*EnvStore, error) {
	if envKey == "" {
		return nil, fmt.Errorf("environment key cannot be empty")
	}

	if _, exists := os.LookupEnv(envKey); !exists {
		return nil, fmt.Errorf("environment variable %s not set", envKey)
	}

	return &EnvStore{envKey: envKey}, nil
}

func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	secret := os.Getenv(e.envKey)
	if secret == "" {
		return "", fmt.Errorf("environment variable %s is empty", e.envKey)
	}
	return secret, nil
}

func (e *EnvStore) Write(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("environment variable storage is read-only")
}
