// Package app wires configuration, credentials, the retailer client and the
// MCP server into one runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"localhost/kroger-mcp/internal/kroger"
	"localhost/kroger-mcp/internal/mcpserver"
)

// Version is reported to MCP hosts during initialization.
// Overridable at build time via -ldflags "-X localhost/kroger-mcp/internal/app.Version=...".
var Version = "dev"

// App orchestrates the lifecycle of the MCP server and related services.
type App struct {
	cfg    *Config
	server *mcpserver.Server
}

// New creates a new App instance. The client secret is read exactly once
// here; a missing client id or unreadable secret fails construction rather
// than the first request.
func New(ctx context.Context, cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	creds, err := resolveCredentials(ctx, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}

	client, err := kroger.NewClient(creds,
		kroger.WithBaseURL(cfg.Upstream.BaseURL),
		kroger.WithScope(cfg.Upstream.Scope),
		kroger.WithTimeout(cfg.Upstream.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kroger client: %w", err)
	}

	server, err := mcpserver.New(client, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	return &App{
		cfg:    cfg,
		server: server,
	}, nil
}

// Start starts the configured transport and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection
// for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	var shutdownFuncs []func(context.Context) error

	switch a.cfg.Server.Transport {
	case TransportStdio:
		slog.InfoContext(gCtx, "serving MCP over stdio")
		g.Go(func() error {
			if err := a.server.ServeStdio(gCtx); err != nil {
				slog.ErrorContext(gCtx, "stdio transport error", "error", err)
				return fmt.Errorf("stdio: %w", err)
			}
			return nil
		})

	case TransportHTTP:
		address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
		slog.InfoContext(gCtx, "starting MCP HTTP server", "address", address)
		serverErrCh, err := a.server.Start(gCtx, address)
		if err != nil {
			return fmt.Errorf("server startup failed: %w", err)
		}
		shutdownFuncs = append(shutdownFuncs, a.server.Shutdown)

		// Monitor runtime errors - errgroup cancels context on first error
		g.Go(func() error {
			select {
			case err := <-serverErrCh:
				if err != nil {
					slog.ErrorContext(gCtx, "server runtime error", "error", err)
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-gCtx.Done():
				return nil
			}
		})

	default:
		return fmt.Errorf("unsupported transport: %s", a.cfg.Server.Transport)
	}

	slog.InfoContext(gCtx, "application ready", "transport", string(a.cfg.Server.Transport))

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}

// resolveCredentials builds immutable API credentials from configuration,
// reading the client secret from its configured store.
func resolveCredentials(ctx context.Context, cfg AuthConfig) (kroger.Credentials, error) {
	store, err := cfg.NewSecretStore()
	if err != nil {
		return kroger.Credentials{}, fmt.Errorf("failed to create secret store: %w", err)
	}

	secret, err := store.Read(ctx)
	if err != nil {
		return kroger.Credentials{}, fmt.Errorf("failed to read client secret: %w", err)
	}

	return kroger.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: secret,
	}, nil
}
