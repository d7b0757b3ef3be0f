package alertrule

import (
	"github.com/campuskit/utilitrack/internal/alertrule/repository"
	"github.com/campuskit/utilitrack/internal/alertrule/service"
	"go.uber.org/fx"
)

// Module wires rule administration and the evaluator's rule source.
var Module = fx.Module("alertrule",
	fx.Provide(
		repository.New,
		service.NewService,
	),
)
