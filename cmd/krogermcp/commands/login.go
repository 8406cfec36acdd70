package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"localhost/kroger-mcp/internal/app"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "store the Kroger API client secret in the configured backend",
		Action: loginAction,
	}
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Auth.Secret.Storage == app.SecretStorageTypeEnv {
		return errors.New("env storage is read-only; set auth.secret.storage to file or keyring")
	}

	store, err := cfg.Auth.NewSecretStore()
	if err != nil {
		return fmt.Errorf("failed to create secret store: %w", err)
	}

	// Prompt on stderr without echo; the secret must never reach the
	// terminal scrollback or stdout.
	fmt.Fprint(os.Stderr, "Client secret: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading secret: %w", err)
	}

	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return errors.New("empty secret")
	}

	if err := store.Write(ctx, secret); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Client secret stored.")
	return nil
}
