package webhook_handler

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/brightharbor/storefront/internal/app/service/customer"
	"github.com/brightharbor/storefront/internal/app/service/fulfillment"
	"github.com/brightharbor/storefront/internal/app/service/mailer"
	"github.com/brightharbor/storefront/internal/app/service/order"
	"github.com/brightharbor/storefront/internal/app/service/webhook_log"
	"github.com/brightharbor/storefront/pkg/config"
)

// newFromServices binds the concrete services onto the pipeline's
// dependency interfaces.
func newFromServices(
	cfg *config.Config,
	logSvc *webhook_log.Service,
	orders *order.Service,
	customers *customer.Service,
	mail *mailer.Service,
	ful *fulfillment.Client,
	log *zap.SugaredLogger,
) *Handler {
	return NewHandler(cfg, logSvc, orders, customers, mail, ful, log)
}

// Module exposes the webhook pipeline via Fx.
var Module = fx.Options(
	fx.Provide(newFromServices),
)
