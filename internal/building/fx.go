package building

import (
	"github.com/campuskit/utilitrack/internal/building/repository"
	"github.com/campuskit/utilitrack/internal/building/service"
	"go.uber.org/fx"
)

// Module wires building metadata access and registry administration.
var Module = fx.Module("building",
	fx.Provide(
		repository.New,
		service.NewService,
	),
)
