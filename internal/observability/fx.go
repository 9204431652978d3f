package observability

import (
	"github.com/ayz7879/fg-plant/internal/config"
	"github.com/ayz7879/fg-plant/internal/observability/logger"
	"github.com/ayz7879/fg-plant/internal/observability/metrics"
	"github.com/ayz7879/fg-plant/internal/observability/tracing"
	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	fx.Module("observability.tracing",
		fx.Invoke(tracing.NewProvider),
	),
	fx.Module("observability.metrics",
		fx.Provide(func(cfg config.Config) (*metrics.HTTPMetrics, error) {
			return metrics.NewHTTPMetrics(cfg.ServiceName)
		}),
		fx.Provide(func(cfg config.Config) *metrics.BillingMetrics {
			return metrics.Billing(cfg.ServiceName)
		}),
	),
)
