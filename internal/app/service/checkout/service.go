package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"

	"github.com/brightharbor/storefront/pkg/config"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/types"
)

var (
	// ErrNotConfigured means the Stripe secret key is absent. Endpoints fail
	// closed instead of silently skipping the operation.
	ErrNotConfigured = errors.New("payment service not configured")

	ErrUnknownOffering = errors.New("unknown offering")
)

// Service creates hosted checkout and customer portal sessions.
type Service struct {
	cfg *config.Config
	sc  *client.API
	log *zap.SugaredLogger
}

func NewService(cfg *config.Config, sc *client.API, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, sc: sc, log: log}
}

type CreateSessionRequest struct {
	OfferingID    string `json:"offering_id" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerName  string `json:"customer_name" binding:"required,min=2,max=100"`
	PromoCode     string `json:"promo_code"`
	// Test marks the session as a test purchase. The flag rides the session
	// metadata into the resulting order so reporting can exclude it.
	Test bool `json:"test"`
}

func (s *Service) buildSessionParams(off *types.Offering, req *CreateSessionRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(off.PriceID), Quantity: stripe.Int64(1)},
		},
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(s.cfg.SiteBaseURL + "/thank-you?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(s.cfg.SiteBaseURL + "/pricing"),
	}
	params.AddMetadata("offering_id", off.ID)
	params.AddMetadata("package_type", off.PackageType)
	params.AddMetadata("customer_name", req.CustomerName)
	if req.Test {
		params.AddMetadata("test", "true")
	}

	if off.IsSubscription() {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"tier": string(off.Tier), "offering_id": off.ID},
		}
	} else {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"offering_id": off.ID, "customer_email": req.CustomerEmail},
		}
	}

	if req.PromoCode != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{PromotionCode: stripe.String(req.PromoCode)},
		}
	} else {
		params.AllowPromotionCodes = stripe.Bool(true)
	}
	return params
}

// CreateSession resolves the offering from configuration and creates a
// hosted checkout session, returning its URL. Session metadata carries the
// offering identity so the webhook pipeline can round-trip it into the
// resulting order's package_type.
func (s *Service) CreateSession(ctx context.Context, req *CreateSessionRequest) (string, error) {
	off := s.cfg.GetOfferingByID(req.OfferingID)
	if off == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownOffering, req.OfferingID)
	}
	if s.sc == nil {
		return "", ErrNotConfigured
	}

	sess, err := s.sc.CheckoutSessions.New(s.buildSessionParams(off, req))
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("checkout_session_created",
		"session_id", sess.ID, "offering_id", off.ID)
	return sess.URL, nil
}

type CreatePortalRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	ReturnURL  string `json:"return_url" binding:"required,url"`
}

// CreatePortal creates a hosted subscription-management portal session for
// an existing Stripe customer.
func (s *Service) CreatePortal(ctx context.Context, req *CreatePortalRequest) (string, error) {
	if s.sc == nil {
		return "", ErrNotConfigured
	}
	sess, err := s.sc.BillingPortalSessions.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(req.CustomerID),
		ReturnURL: stripe.String(req.ReturnURL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

// Offerings returns the configured catalog, for the marketing site.
func (s *Service) Offerings() []*types.Offering { return s.cfg.Offerings }
