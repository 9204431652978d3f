package scheduler

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/ayz7879/fg-plant/internal/billing/domain"
	"github.com/ayz7879/fg-plant/internal/config"
)

type Params struct {
	fx.In

	Config  config.Config
	Billing billingdomain.Service
	Log     *zap.Logger
}

func NewFromConfig(p Params) *Normalizer {
	return NewNormalizer(Config{
		PollInterval: p.Config.NormalizerPollInterval,
		RunTimeout:   p.Config.NormalizerRunTimeout,
	}, p.Billing, p.Log)
}

var Module = fx.Module("scheduler.normalizer",
	fx.Provide(NewFromConfig),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, normalizer *Normalizer) {
	loopCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go normalizer.RunForever(loopCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
