package service

import "go.uber.org/fx"

// Module wires the reporting service. The numeric core one package up is
// pure and needs no providers.
var Module = fx.Module("analytics",
	fx.Provide(
		NewService,
	),
)
