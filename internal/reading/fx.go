package reading

import (
	"github.com/campuskit/utilitrack/internal/reading/repository"
	"github.com/campuskit/utilitrack/internal/reading/service"
	"go.uber.org/fx"
)

// Module wires the reading source and the ingest service.
var Module = fx.Module("reading",
	fx.Provide(
		repository.New,
		service.NewService,
	),
)
