package history

import (
	"github.com/ayz7879/fg-plant/internal/history/service"
	"go.uber.org/fx"
)

var Module = fx.Module("history.service",
	fx.Provide(service.NewService),
)
