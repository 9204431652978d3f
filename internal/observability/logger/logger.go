package logger

import (
	"context"

	"github.com/ayz7879/fg-plant/internal/config"
	obscontext "github.com/ayz7879/fg-plant/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability.logger",
	fx.Provide(NewLogger),
	fx.Invoke(func(log *zap.Logger) {
		zap.ReplaceGlobals(log)
	}),
)

// NewLogger builds the root logger for the service.
func NewLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	log = log.With(
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion),
	)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})

	return log, nil
}

// FromContext returns the global logger enriched with trace and request
// correlation fields found on the context.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}

	span := trace.SpanContextFromContext(ctx)
	if span.HasTraceID() {
		log = log.With(zap.String("trace_id", span.TraceID().String()))
	}
	if span.HasSpanID() {
		log = log.With(zap.String("span_id", span.SpanID().String()))
	}

	return log
}
