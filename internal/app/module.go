package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/brightharbor/storefront/internal/app/api/server"
	"github.com/brightharbor/storefront/internal/app/service/checkout"
	"github.com/brightharbor/storefront/internal/app/service/contact"
	"github.com/brightharbor/storefront/internal/app/service/customer"
	"github.com/brightharbor/storefront/internal/app/service/fulfillment"
	"github.com/brightharbor/storefront/internal/app/service/mailer"
	"github.com/brightharbor/storefront/internal/app/service/order"
	"github.com/brightharbor/storefront/internal/app/service/statistics"
	"github.com/brightharbor/storefront/internal/app/service/webhook_handler"
	"github.com/brightharbor/storefront/internal/app/service/webhook_log"
	"github.com/brightharbor/storefront/internal/platform/db"
	"github.com/brightharbor/storefront/internal/platform/payment"
	"github.com/brightharbor/storefront/pkg/config"
	"github.com/brightharbor/storefront/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	payment.Module,
	server.Module,
	webhook_log.Module,
	webhook_handler.Module,
	order.Module,
	customer.Module,
	contact.Module,
	mailer.Module,
	fulfillment.Module,
	statistics.Module,
	checkout.Module,
)
