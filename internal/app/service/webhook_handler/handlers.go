package webhook_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/datatypes"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/types"
)

func (h *Handler) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}
	lg := logctx.FromCtx(ctx, h.Logger)

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		lg.Infow("checkout_session_not_paid", "session_id", session.ID, "payment_status", session.PaymentStatus)
		return nil
	}

	email := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		email = session.CustomerDetails.Email
	}
	name := session.Metadata["customer_name"]
	if name == "" && session.CustomerDetails != nil {
		name = session.CustomerDetails.Name
	}
	var stripeCustomerID string
	if session.Customer != nil {
		stripeCustomerID = session.Customer.ID
	}

	off := h.cfg.GetOfferingByID(session.Metadata["offering_id"])
	packageType := session.Metadata["package_type"]
	if off != nil {
		packageType = off.PackageType
	}

	if _, err := h.customers.RecordPurchase(ctx, email, name, stripeCustomerID, session.AmountTotal, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}

	metaRaw, _ := json.Marshal(session.Metadata)
	o := &models.Order{
		StripeSessionID:   session.ID,
		CustomerName:      name,
		CustomerEmail:     email,
		PackageType:       packageType,
		Amount:            session.AmountTotal,
		Currency:          string(session.Currency),
		Status:            models.OrderStatusPaid,
		FulfillmentStatus: models.FulfillmentStatusPending,
		Metadata:          datatypes.JSON(metaRaw),
	}
	if err := h.orders.Create(ctx, o); err != nil {
		return err
	}
	lg.Infow("order_created", "order_id", o.ID, "session_id", session.ID, "package_type", packageType)

	if off != nil && off.HasDeliverables {
		if err := h.mailer.SendOrderKickoff(ctx, o, off.Name); err != nil {
			return fmt.Errorf("failed to send kickoff email: %w", err)
		}
		if h.fulfillment.Configured() {
			if err := h.fulfillment.RequestDelivery(ctx, o); err != nil {
				return err
			}
			if err := h.orders.MarkFulfillment(ctx, o.StripeSessionID, models.FulfillmentStatusProcessing); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveTier reads the tier from subscription metadata, falling back to the
// configured price-ID mapping.
func (h *Handler) resolveTier(sub *stripe.Subscription) (types.Tier, bool) {
	if t := sub.Metadata["tier"]; t != "" {
		return types.Tier(t), true
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		if off := h.cfg.GetOfferingByPriceID(sub.Items.Data[0].Price.ID); off != nil && off.Tier != "" {
			return off.Tier, true
		}
	}
	return "", false
}

func (h *Handler) handleSubscriptionUpserted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}
	if sub.Customer == nil {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}

	tier, ok := h.resolveTier(&sub)
	if !ok {
		// An unmapped price means the offering catalog is missing this plan;
		// retrying the delivery would not change that.
		logctx.FromCtx(ctx, h.Logger).Warnw("tier_unresolved", "subscription_id", sub.ID)
		return nil
	}
	return h.customers.SetTier(ctx, sub.Customer.ID, &tier)
}

func (h *Handler) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}
	if sub.Customer == nil {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}
	// Clear the tier only; the customer row and its purchase history stay.
	return h.customers.SetTier(ctx, sub.Customer.ID, nil)
}

func (h *Handler) handlePaymentIntentSucceeded(ctx context.Context, event *stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}
	lg := logctx.FromCtx(ctx, h.Logger)

	sessionID := pi.Metadata["stripe_session_id"]
	if sessionID == "" {
		lg.Infow("payment_intent_without_session", "intent_id", pi.ID)
		return nil
	}

	o, err := h.orders.UpdateStatusBySessionID(ctx, sessionID, models.OrderStatusPaid)
	if err != nil {
		return err
	}
	lg.Infow("order_marked_paid", "order_id", o.ID, "session_id", sessionID)

	if h.fulfillment.Configured() {
		if off := h.offeringForOrder(o); off != nil && off.HasDeliverables {
			if err := h.fulfillment.RequestDelivery(ctx, o); err != nil {
				return err
			}
			if err := h.orders.MarkFulfillment(ctx, sessionID, models.FulfillmentStatusProcessing); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) handlePaymentIntentFailed(ctx context.Context, event *stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}
	lg := logctx.FromCtx(ctx, h.Logger)

	sessionID := pi.Metadata["stripe_session_id"]
	if sessionID == "" {
		lg.Infow("payment_intent_without_session", "intent_id", pi.ID)
		return nil
	}

	o, err := h.orders.UpdateStatusBySessionID(ctx, sessionID, models.OrderStatusFailed)
	if err != nil {
		return err
	}
	// TODO: send the payment-failure email to the customer; only the intent
	// is logged today.
	lg.Infow("order_marked_failed", "order_id", o.ID, "session_id", sessionID,
		"customer_notification", "pending")
	return nil
}

func (h *Handler) handleInvoicePaid(ctx context.Context, event *stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	logctx.FromCtx(ctx, h.Logger).Infow("invoice_payment_succeeded", "invoice_id", inv.ID)
	return nil
}

// offeringForOrder resolves the configured offering from the order metadata
// written at checkout time.
func (h *Handler) offeringForOrder(o *models.Order) *types.Offering {
	if len(o.Metadata) == 0 {
		return nil
	}
	var meta map[string]string
	if err := json.Unmarshal(o.Metadata, &meta); err != nil {
		return nil
	}
	return h.cfg.GetOfferingByID(meta["offering_id"])
}
