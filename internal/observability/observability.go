// Package observability builds the process-wide logger, metrics registry and
// tracer that are injected into every module.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ChuloWay/gamification-system/config"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the instrumentation handles shared by all modules.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Tracer   trace.Tracer
	Metrics  metrics.OperationMetrics
}

// Init builds the observability handles from configuration.
func Init(cfg *config.Config) *Observability {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger := NewLogger(os.Stdout, cfg.Observability.LogLevel, cfg.App.Name, cfg.App.Version, cfg.App.Environment)
	slog.SetDefault(logger)

	return &Observability{
		Logger:   logger,
		Registry: registry,
		Tracer:   otel.Tracer(cfg.App.Name),
		Metrics:  metrics.NewOperationMetrics(registry, cfg.Observability.MetricsNamespace),
	}
}

// NewLogger returns a JSON slog logger tagged with the service identity.
func NewLogger(w io.Writer, level, service, version, environment string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler).With(
		slog.String("service", service),
		slog.String("version", version),
		slog.String("environment", environment),
	)
}

// ParseLevel maps a textual level to slog, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
