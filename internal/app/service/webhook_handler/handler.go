package webhook_handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/config"
	"github.com/brightharbor/storefront/pkg/logctx"
)

var (
	// ErrInvalidSignature means the delivery failed authentication. Nothing
	// about it is persisted beyond this rejection.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrNotConfigured means the webhook signing secret is absent.
	ErrNotConfigured = errors.New("webhook handler not configured")
)

type handlerFunc func(ctx context.Context, event *stripe.Event) error

// Handler runs the webhook pipeline: verify, log, dispatch, update status.
// One instance serves all inbound event types through a single registry.
type Handler struct {
	cfg         *config.Config
	logStore    EventLogStore
	orders      OrderStore
	customers   CustomerStore
	mailer      KickoffMailer
	fulfillment Deliverer
	Logger      *zap.SugaredLogger

	registry map[stripe.EventType]handlerFunc
}

func NewHandler(
	cfg *config.Config,
	logStore EventLogStore,
	orders OrderStore,
	customers CustomerStore,
	mail KickoffMailer,
	fulfillment Deliverer,
	log *zap.SugaredLogger,
) *Handler {
	h := &Handler{
		cfg:         cfg,
		logStore:    logStore,
		orders:      orders,
		customers:   customers,
		mailer:      mail,
		fulfillment: fulfillment,
		Logger:      log,
	}
	h.registry = map[stripe.EventType]handlerFunc{
		stripe.EventTypeCheckoutSessionCompleted:    h.handleCheckoutCompleted,
		stripe.EventTypeCustomerSubscriptionCreated: h.handleSubscriptionUpserted,
		stripe.EventTypeCustomerSubscriptionUpdated: h.handleSubscriptionUpserted,
		stripe.EventTypeCustomerSubscriptionDeleted: h.handleSubscriptionDeleted,
		stripe.EventTypePaymentIntentSucceeded:      h.handlePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed:  h.handlePaymentIntentFailed,
		// Registered no-op: invoice payments carry no local side effect;
		// subscription events drive tier state.
		stripe.EventTypeInvoicePaymentSucceeded: h.handleInvoicePaid,
	}
	return h
}

// VerifyAndParse authenticates the raw request body against the signature
// header. Verification runs on the raw bytes: re-serialization could change
// content byte-for-byte and break the HMAC.
func (h *Handler) VerifyAndParse(payload []byte, sigHeader string) (*stripe.Event, error) {
	if h.cfg.Stripe.WebhookSecret == "" {
		return nil, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, h.cfg.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &event, nil
}

// ProcessEvent logs the event, dispatches it to the registered handler, and
// rewrites the log row with the outcome. The duplicate return is true when
// strict idempotency short-circuited a redelivered event before any side
// effect ran.
func (h *Handler) ProcessEvent(ctx context.Context, event *stripe.Event) (duplicate bool, err error) {
	lg := logctx.FromCtx(ctx, h.Logger).With("event_id", event.ID, "event_type", string(event.Type))

	if h.cfg.Webhook.StrictIdempotency {
		done, checkErr := h.logStore.HasProcessed(ctx, event.ID)
		if checkErr != nil {
			// Pre-check failure falls through to normal at-least-once handling.
			lg.Warnw("idempotency pre-check failed", "err", checkErr)
		} else if done {
			lg.Infow("duplicate_event_skipped")
			return true, nil
		}
	}

	var traceID string
	if tid, ok := ctx.Value("traceID").(string); ok {
		traceID = tid
	}
	h.logStore.LogReceived(ctx, &models.WebhookLog{
		EventID:   event.ID,
		EventType: string(event.Type),
		Payload:   datatypes.JSON(event.Data.Raw),
		TraceID:   traceID,
	})

	fn, ok := h.registry[event.Type]
	if !ok {
		// New provider event types are expected; acknowledging them keeps the
		// provider from retrying deliveries we have no reaction to.
		lg.Infow("unhandled_event_type")
		h.logStore.MarkProcessed(ctx, event.ID)
		return false, nil
	}

	if err := fn(ctx, event); err != nil {
		lg.Errorw("webhook_handler_error", "err", err)
		h.logStore.MarkFailed(ctx, event.ID, err.Error())
		return false, err
	}

	h.logStore.MarkProcessed(ctx, event.ID)
	return false, nil
}
