package billing

import (
	"github.com/ayz7879/fg-plant/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(service.NewService),
)
