package fulfillment

import "go.uber.org/fx"

// Module exposes the fulfillment client via Fx.
var Module = fx.Options(
	fx.Provide(NewClient),
)
