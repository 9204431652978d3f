package entry

import (
	"github.com/ayz7879/fg-plant/internal/entry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entry.service",
	fx.Provide(service.NewService),
)
