package logger

import (
	"strings"
	"time"

	obscontext "github.com/ayz7879/fg-plant/internal/observability/context"
	"github.com/ayz7879/fg-plant/internal/observability/tracing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// MiddlewareConfig tunes the request logging middleware.
type MiddlewareConfig struct {
	// SkipPaths lists exact paths excluded from access logging (health and
	// metrics probes).
	SkipPaths []string
}

// GinMiddleware assigns a request id, stores it on the request context, and
// emits one access log line per request with sensitive fields masked.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)

		ctx := tracing.ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx = obscontext.WithRequestID(ctx, requestID)
		if operator := strings.TrimSpace(c.GetHeader("X-Operator")); operator != "" {
			ctx = obscontext.WithActor(ctx, operator)
		}
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		if _, ok := skip[c.Request.URL.Path]; ok {
			return
		}

		FromContext(ctx).Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Any("headers", MaskHeaders(c.Request.Header)),
		)
	}
}
