package contact

import "go.uber.org/fx"

// Module exposes the contact service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
