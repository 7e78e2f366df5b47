package webhook_log

import "go.uber.org/fx"

// Module exposes the webhook log service via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
