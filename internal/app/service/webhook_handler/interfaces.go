package webhook_handler

import (
	"context"
	"time"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/types"
)

// Dependency surfaces of the pipeline. The concrete services satisfy these;
// tests substitute fakes.

type EventLogStore interface {
	LogReceived(ctx context.Context, entry *models.WebhookLog)
	MarkProcessed(ctx context.Context, eventID string)
	MarkFailed(ctx context.Context, eventID, errMsg string)
	HasProcessed(ctx context.Context, eventID string) (bool, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	UpdateStatusBySessionID(ctx context.Context, sessionID string, status models.OrderStatus) (*models.Order, error)
	MarkFulfillment(ctx context.Context, sessionID string, status models.FulfillmentStatus) error
}

type CustomerStore interface {
	RecordPurchase(ctx context.Context, email, name, stripeCustomerID string, amount int64, at time.Time) (*models.Customer, error)
	SetTier(ctx context.Context, stripeCustomerID string, tier *types.Tier) error
}

type KickoffMailer interface {
	SendOrderKickoff(ctx context.Context, o *models.Order, packageName string) error
}

type Deliverer interface {
	Configured() bool
	RequestDelivery(ctx context.Context, o *models.Order) error
}
