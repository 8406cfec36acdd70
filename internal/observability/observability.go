// Package observability wires the process-wide logger. Logs go to stderr as
// text or JSON; stdout is reserved for the stdio MCP transport. When an OTLP
// endpoint is configured through the standard OTEL_* environment variables,
// logs are exported through the OpenTelemetry log pipeline instead.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// loggerName identifies this process in exported log records.
const loggerName = "kroger-mcp"

// provider holds the active OTel logger provider, if any, for Shutdown.
var provider *sdklog.LoggerProvider

// Instrument installs the default slog logger.
//
// format selects the stderr handler ("text" or "json"). If the environment
// carries OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_LOGS_EXPORTER=console, the
// stderr handler is replaced with an OTel-bridged handler filtered to the
// given level.
func Instrument(level slog.Level, format string) error {
	exporter, err := newExporterFromEnv()
	if err != nil {
		return fmt.Errorf("configuring log exporter: %w", err)
	}

	if exporter == nil {
		var handler slog.Handler
		opts := &slog.HandlerOptions{Level: level}
		switch format {
		case "json":
			handler = slog.NewJSONHandler(os.Stderr, opts)
		default:
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
		return nil
	}

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level))
	provider = sdklog.NewLoggerProvider(sdklog.WithProcessor(processor))

	slog.SetDefault(otelslog.NewLogger(loggerName, otelslog.WithLoggerProvider(provider)))
	return nil
}

// Shutdown flushes any pending exported log records.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// newExporterFromEnv builds a log exporter from the standard OTel environment
// variables, or nil when none is configured.
func newExporterFromEnv() (sdklog.Exporter, error) {
	if strings.EqualFold(os.Getenv("OTEL_LOGS_EXPORTER"), "console") {
		return stdoutlog.New()
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" &&
		os.Getenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT") == "" {
		return nil, nil
	}

	// Exporters pick endpoint, headers and TLS settings up from the
	// environment themselves; only the protocol needs dispatching here.
	switch os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") {
	case "grpc":
		return otlploggrpc.New(context.Background())
	default:
		return otlploghttp.New(context.Background())
	}
}

// severity maps an slog level onto the minimum severity passed to the filter
// processor.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
