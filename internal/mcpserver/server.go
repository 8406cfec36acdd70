// Package mcpserver exposes the retailer client as MCP tools over stdio or
// HTTP. It owns the tool registration and the HTTP server lifecycle; the
// retailer semantics live in the kroger package.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcp/server"

	"localhost/kroger-mcp/internal/kroger"
)

const (
	// serverName is reported to hosts during MCP initialization.
	serverName = "kroger"

	nearestStoreToolName   = "get_nearest_store_information"
	searchProductsToolName = "search_products"
)

// Server hosts the Kroger tool surface.
type Server struct {
	mcp        *server.Server
	httpServer *http.Server
}

// New creates a Server exposing the two retailer tools backed by the given client.
func New(client *kroger.Client, version string) (*Server, error) {
	tools := &toolset{client: client}

	newHandler := protoserver.WithDefaultHandler(context.Background(), func(h *protoserver.DefaultHandler) error {
		if err := protoserver.RegisterTool[*NearestStoreInput, *NearestStoreOutput](h.Registry,
			nearestStoreToolName,
			"Get information about the nearest Kroger grocery store for a given zip code.",
			tools.nearestStore); err != nil {
			return err
		}
		return protoserver.RegisterTool[*ProductSearchInput, *ProductSearchOutput](h.Registry,
			searchProductsToolName,
			"Search for products at a Kroger store by free-text query. Requires the store id from "+nearestStoreToolName+" so results carry store-specific pricing.",
			tools.searchProducts)
	})

	mcp, err := server.New(
		server.WithNewHandler(newHandler),
		server.WithImplementation(schema.Implementation{Name: serverName, Version: version}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	return &Server{mcp: mcp}, nil
}

// ServeStdio serves the MCP protocol over stdin/stdout, blocking until the
// host closes the stream or the context is canceled. Logs must go to stderr
// in this mode; stdout carries the protocol.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.mcp.Stdio(ctx).ListenAndServe()
}

// Start starts the HTTP transport in the background and returns immediately.
// Returns a channel for runtime errors and a startup error if any.
//
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors (network failures during operation) are sent to the error channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	// Startup phase: Create listener synchronously to catch port-in-use errors immediately
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	endpoint := s.mcp.HTTP(ctx, address)
	endpoint.Handler = applyMiddlewares(endpoint.Handler,
		Logging(slog.Default()),
		Recovery,
	)
	endpoint.ReadTimeout = 30 * time.Second  // Read entire client request (DoS protection against slow clients)
	endpoint.WriteTimeout = 15 * time.Minute // Allows long-lived SSE streams, still bounded
	endpoint.IdleTimeout = 90 * time.Second  // Keep-alive wait for next request from client
	endpoint.BaseContext = func(net.Listener) context.Context {
		return ctx
	}
	s.httpServer = endpoint

	errCh := make(chan error, 1)

	go func() {
		err := endpoint.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown performs graceful shutdown of the HTTP transport.
// Returns error if shutdown fails or times out. No-op for stdio serving.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = s.httpServer.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
