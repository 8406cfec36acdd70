package secretstore

import (
	"context"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore delegates to the platform credential manager (Keychain on
// macOS, Credential Manager on Windows, Secret Service on Linux).
type KeyringStore struct {
	service string
	user    string
}

var _ Store = (*KeyringStore)(nil)

func NewKeyringStore(service, user string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}

	return &KeyringStore{service: service, user: user}, nil
}

func (k *KeyringStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	secret, err := keyring.Get(k.service, k.user)
	if err != nil {
		return "", err
	}

	if secret == "" {
		return "", fmt.Errorf("empty secret in keyring for service %s, user %s", k.service, k.user)
	}

	return secret, nil
}

// Write overwrites any existing keyring entry.
func (k *KeyringStore) Write(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return keyring.Set(k.service, k.user, secret)
}
