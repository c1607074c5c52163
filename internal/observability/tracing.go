package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// startTracing installs the Uptrace exporter as the global OpenTelemetry
// provider. A disabled or DSN-less config returns a nil stop.
func startTracing(cfg config.Config, component string, logger *logging.Logger) (func(context.Context) error, error) {
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled", "reason", "UPTRACE_ENABLED=false")
		return nil, nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Info("tracing disabled", "reason", "UPTRACE_DSN empty")
		return nil, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attribute.String("service.component", component)),
	)
	logger.Info("tracing enabled", "exporter", "uptrace", "service_name", cfg.ServiceName, "environment", cfg.AppEnv)

	return uptrace.Shutdown, nil
}
