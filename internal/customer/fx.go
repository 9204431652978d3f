package customer

import (
	"github.com/ayz7879/fg-plant/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(service.NewService),
)
