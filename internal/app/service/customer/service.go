package customer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/tool"
	"github.com/brightharbor/storefront/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// RecordPurchase upserts the customer keyed by email and accumulates the
// aggregate purchase counters. Name and stripe customer ID are refreshed from
// the latest checkout.
func (s *Service) RecordPurchase(ctx context.Context, email, name, stripeCustomerID string, amount int64, at time.Time) (*models.Customer, error) {
	if email == "" {
		return nil, fmt.Errorf("customer email is required")
	}

	cust := &models.Customer{
		ID:               tool.GenerateUUIDV7(),
		Email:            email,
		Name:             name,
		StripeCustomerID: stripeCustomerID,
		TotalSpent:       amount,
		OrderCount:       1,
		LastOrderAt:      &at,
	}

	assignments := map[string]interface{}{
		"total_spent":   gorm.Expr("customers.total_spent + ?", amount),
		"order_count":   gorm.Expr("customers.order_count + 1"),
		"last_order_at": at,
		"updated_at":    time.Now(),
	}
	if name != "" {
		assignments["name"] = name
	}
	if stripeCustomerID != "" {
		assignments["stripe_customer_id"] = stripeCustomerID
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(cust).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	// Re-read so accumulated counters are returned, not the insert candidate.
	var saved models.Customer
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// SetTier assigns (or clears, with nil) the customer's tier by Stripe
// customer ID. A missing row is logged but not treated as an error: the
// provider can emit subscription events before the checkout one lands.
func (s *Service) SetTier(ctx context.Context, stripeCustomerID string, tier *types.Tier) error {
	if stripeCustomerID == "" {
		return fmt.Errorf("stripe customer id is required")
	}
	res := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("stripe_customer_id = ?", stripeCustomerID).
		Update("tier", tier)
	if res.Error != nil {
		return fmt.Errorf("failed to update customer tier: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Warnw("tier update matched no customer", "stripe_customer_id", stripeCustomerID)
	}
	return nil
}

// GetByEmail returns the customer row for email, if any.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var cust models.Customer
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&cust).Error; err != nil {
		return nil, err
	}
	return &cust, nil
}
