package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	billingdomain "github.com/ayz7879/fg-plant/internal/billing/domain"
)

// Config controls the background normalization loop.
type Config struct {
	// PollInterval is how often a normalization pass runs.
	PollInterval time.Duration

	// RunTimeout bounds a single pass.
	RunTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Minute
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = 30 * time.Second
	}
	return c
}

// Normalizer periodically reopens settled cycles that rolled into a new
// billing month. Serving paths also normalize on demand; the loop keeps the
// store fresh between requests.
type Normalizer struct {
	cfg     Config
	billing billingdomain.Service
	log     *zap.Logger
}

func NewNormalizer(cfg Config, billing billingdomain.Service, log *zap.Logger) *Normalizer {
	return &Normalizer{
		cfg:     cfg.withDefaults(),
		billing: billing,
		log:     log.Named("scheduler.normalizer"),
	}
}

// RunForever runs normalization passes until ctx is cancelled.
func (n *Normalizer) RunForever(ctx context.Context) {
	ticker := time.NewTicker(n.cfg.PollInterval)
	defer ticker.Stop()

	n.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single bounded normalization pass.
func (n *Normalizer) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, n.cfg.RunTimeout)
	defer cancel()

	report, err := n.billing.NormalizeCycles(runCtx)
	if err != nil {
		n.log.Warn("normalization pass failed", zap.Error(err))
		return
	}
	if report.Reset > 0 || report.Skipped > 0 {
		n.log.Info("normalization pass finished",
			zap.Int("day", report.Day),
			zap.Int("candidates", report.Candidates),
			zap.Int("reset", report.Reset),
			zap.Int("skipped", report.Skipped))
	}
}
