package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stripe/stripe-go/v82/client"

	cfgpkg "github.com/brightharbor/storefront/pkg/config"
)

// NewStripeClient builds the Stripe API client. A missing secret key yields a
// nil client; endpoints that need it fail closed with "not configured" at
// first use instead of at boot, so webhook-only deployments still start.
func NewStripeClient(l *zap.SugaredLogger, cfg *cfgpkg.Config) *client.API {
	if cfg.Stripe.SecretKey == "" {
		l.Warnw("stripe secret key not configured; payment endpoints disabled")
		return nil
	}
	return client.New(cfg.Stripe.SecretKey, nil)
}

var Module = fx.Options(
	fx.Provide(NewStripeClient),
)
