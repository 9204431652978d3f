package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	auditdomain "github.com/ayz7879/fg-plant/internal/audit/domain"
	billingdomain "github.com/ayz7879/fg-plant/internal/billing/domain"
	"github.com/ayz7879/fg-plant/internal/billing/render"
	"github.com/ayz7879/fg-plant/internal/config"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	entrydomain "github.com/ayz7879/fg-plant/internal/entry/domain"
	historydomain "github.com/ayz7879/fg-plant/internal/history/domain"
	"github.com/ayz7879/fg-plant/internal/observability/logger"
	"github.com/ayz7879/fg-plant/internal/observability/metrics"
)

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	customer customerdomain.Service
	entry    entrydomain.Service
	history  historydomain.Service
	billing  billingdomain.Service
	audit    auditdomain.Service
	renderer render.Renderer
	limiter  *rateLimiter
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Customer customerdomain.Service
	Entry    entrydomain.Service
	History  historydomain.Service
	Billing  billingdomain.Service
	Audit    auditdomain.Service
	Renderer render.Renderer
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:      p.Config,
		log:      p.Log.Named("server"),
		customer: p.Customer,
		entry:    p.Entry,
		history:  p.History,
		billing:  p.Billing,
		audit:    p.Audit,
		renderer: p.Renderer,
		limiter:  newRateLimiter(p.Config.RateLimitPerMinute, time.Minute),
	}
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RegisterAPIRoutes wires every HTTP route onto the engine.
func RegisterAPIRoutes(engine *gin.Engine, s *Server) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	api.Use(s.rateLimit())

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/search", s.SearchCustomers)
	api.GET("/customers/counts", s.CustomerCounts)
	api.GET("/customers/:id", s.GetCustomer)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	api.POST("/entries", s.CreateEntry)
	api.GET("/entries/:id", s.GetEntry)
	api.PUT("/entries/:id", s.UpdateEntry)
	api.DELETE("/entries/:id", s.DeleteEntry)
	api.GET("/customers/:id/entries", s.ListCustomerEntries)
	api.GET("/customers/:id/summary", s.CustomerSummary)

	api.GET("/history", s.ListHistory)
	api.GET("/history/summary", s.HistorySummary)

	api.GET("/billing/due", s.ListDue)
	api.GET("/billing/due-today", s.ListDueToday)
	api.GET("/billing/customers/:id/due", s.ComputeDue)
	api.GET("/billing/customers/:id/bill", s.RenderBill)
	api.POST("/billing/customers/:id/settle", s.MarkSettled)
	api.POST("/billing/normalize", s.NormalizeCycles)
}

// RunHTTP starts the HTTP listener under the fx lifecycle with graceful
// shutdown.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(render.NewRenderer),
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterAPIRoutes),
	fx.Invoke(RunHTTP),
)
