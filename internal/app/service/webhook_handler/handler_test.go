package webhook_handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/config"
	"github.com/brightharbor/storefront/pkg/types"
)

type fakeLogStore struct {
	received  []*models.WebhookLog
	processed []string
	failed    map[string]string
	seen      map[string]bool
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{failed: map[string]string{}, seen: map[string]bool{}}
}

func (f *fakeLogStore) LogReceived(_ context.Context, entry *models.WebhookLog) {
	f.received = append(f.received, entry)
}

func (f *fakeLogStore) MarkProcessed(_ context.Context, eventID string) {
	f.processed = append(f.processed, eventID)
}

func (f *fakeLogStore) MarkFailed(_ context.Context, eventID, errMsg string) {
	f.failed[eventID] = errMsg
}

func (f *fakeLogStore) HasProcessed(_ context.Context, eventID string) (bool, error) {
	return f.seen[eventID], nil
}

type fakeOrderStore struct {
	created       []*models.Order
	createErr     error
	statusUpdates map[string]models.OrderStatus
	fulfillment   map[string]models.FulfillmentStatus
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		statusUpdates: map[string]models.OrderStatus{},
		fulfillment:   map[string]models.FulfillmentStatus{},
	}
}

func (f *fakeOrderStore) Create(_ context.Context, o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, o)
	return nil
}

func (f *fakeOrderStore) UpdateStatusBySessionID(_ context.Context, sessionID string, status models.OrderStatus) (*models.Order, error) {
	f.statusUpdates[sessionID] = status
	return &models.Order{ID: "order-1", StripeSessionID: sessionID, Status: status}, nil
}

func (f *fakeOrderStore) MarkFulfillment(_ context.Context, sessionID string, status models.FulfillmentStatus) error {
	f.fulfillment[sessionID] = status
	return nil
}

type fakeCustomerStore struct {
	purchases []string
	tiers     map[string]*types.Tier
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{tiers: map[string]*types.Tier{}}
}

func (f *fakeCustomerStore) RecordPurchase(_ context.Context, email, name, stripeCustomerID string, amount int64, _ time.Time) (*models.Customer, error) {
	f.purchases = append(f.purchases, email)
	return &models.Customer{Email: email, Name: name, StripeCustomerID: stripeCustomerID, TotalSpent: amount}, nil
}

func (f *fakeCustomerStore) SetTier(_ context.Context, stripeCustomerID string, tier *types.Tier) error {
	f.tiers[stripeCustomerID] = tier
	return nil
}

type fakeMailer struct {
	kickoffs []string
	err      error
}

func (f *fakeMailer) SendOrderKickoff(_ context.Context, o *models.Order, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.kickoffs = append(f.kickoffs, o.CustomerEmail)
	return nil
}

type fakeDeliverer struct {
	configured bool
	requests   []string
}

func (f *fakeDeliverer) Configured() bool { return f.configured }

func (f *fakeDeliverer) RequestDelivery(_ context.Context, o *models.Order) error {
	f.requests = append(f.requests, o.StripeSessionID)
	return nil
}

type pipelineFakes struct {
	logs      *fakeLogStore
	orders    *fakeOrderStore
	customers *fakeCustomerStore
	mail      *fakeMailer
	deliverer *fakeDeliverer
}

func testConfig() *config.Config {
	return &config.Config{
		Offerings: []*types.Offering{
			{
				ID: "sprint", Name: "Strategy Sprint", PriceID: "price_sprint",
				PackageType: "sprint", Mode: types.CheckoutModePayment, HasDeliverables: true,
			},
			{
				ID: "growth", Name: "Growth Retainer", PriceID: "price_growth",
				PackageType: "retainer", Tier: types.TierGrowth, Mode: types.CheckoutModeSubscription,
			},
		},
	}
}

func newTestHandler(cfg *config.Config) (*Handler, *pipelineFakes) {
	f := &pipelineFakes{
		logs:      newFakeLogStore(),
		orders:    newFakeOrderStore(),
		customers: newFakeCustomerStore(),
		mail:      &fakeMailer{},
		deliverer: &fakeDeliverer{},
	}
	h := NewHandler(cfg, f.logs, f.orders, f.customers, f.mail, f.deliverer, zap.NewNop().Sugar())
	return h, f
}

func evt(id string, typ stripe.EventType, raw string) *stripe.Event {
	return &stripe.Event{ID: id, Type: typ, Data: &stripe.EventData{Raw: json.RawMessage(raw)}}
}

const paidSessionJSON = `{
	"id": "cs_1",
	"amount_total": 150000,
	"currency": "usd",
	"payment_status": "paid",
	"customer": "cus_9",
	"customer_details": {"email": "jane@example.com", "name": "Jane Doe"},
	"metadata": {"offering_id": "sprint", "package_type": "sprint", "customer_name": "Jane Doe"}
}`

func TestProcessEvent_CheckoutCompleted_CreatesOrderAndCustomer(t *testing.T) {
	h, f := newTestHandler(testConfig())

	duplicate, err := h.ProcessEvent(context.Background(), evt("evt_1", stripe.EventTypeCheckoutSessionCompleted, paidSessionJSON))
	require.NoError(t, err)
	require.False(t, duplicate)

	require.Equal(t, []string{"jane@example.com"}, f.customers.purchases)
	require.Len(t, f.orders.created, 1)
	o := f.orders.created[0]
	require.Equal(t, "cs_1", o.StripeSessionID)
	require.Equal(t, models.OrderStatusPaid, o.Status)
	require.Equal(t, "sprint", o.PackageType)
	require.Equal(t, int64(150000), o.Amount)
	require.Equal(t, []string{"evt_1"}, f.logs.processed)
}

func TestProcessEvent_CheckoutCompleted_KicksOffFulfillment(t *testing.T) {
	h, f := newTestHandler(testConfig())
	f.deliverer.configured = true

	_, err := h.ProcessEvent(context.Background(), evt("evt_1", stripe.EventTypeCheckoutSessionCompleted, paidSessionJSON))
	require.NoError(t, err)

	require.Equal(t, []string{"jane@example.com"}, f.mail.kickoffs)
	require.Equal(t, []string{"cs_1"}, f.deliverer.requests)
	require.Equal(t, models.FulfillmentStatusProcessing, f.orders.fulfillment["cs_1"])
}

func TestProcessEvent_CheckoutCompleted_UnpaidSessionIgnored(t *testing.T) {
	h, f := newTestHandler(testConfig())

	raw := `{"id": "cs_2", "payment_status": "unpaid", "customer_details": {"email": "jane@example.com"}}`
	duplicate, err := h.ProcessEvent(context.Background(), evt("evt_2", stripe.EventTypeCheckoutSessionCompleted, raw))
	require.NoError(t, err)
	require.False(t, duplicate)

	require.Empty(t, f.orders.created)
	require.Empty(t, f.customers.purchases)
	require.Equal(t, []string{"evt_2"}, f.logs.processed)
}

func TestProcessEvent_UnknownEventType_Acknowledged(t *testing.T) {
	h, f := newTestHandler(testConfig())

	duplicate, err := h.ProcessEvent(context.Background(), evt("evt_3", "charge.refunded", `{}`))
	require.NoError(t, err)
	require.False(t, duplicate)

	require.Len(t, f.logs.received, 1)
	require.Equal(t, []string{"evt_3"}, f.logs.processed)
}

func TestProcessEvent_HandlerError_MarksFailed(t *testing.T) {
	h, f := newTestHandler(testConfig())
	f.orders.createErr = errors.New("duplicate key value violates unique constraint")

	_, err := h.ProcessEvent(context.Background(), evt("evt_4", stripe.EventTypeCheckoutSessionCompleted, paidSessionJSON))
	require.Error(t, err)
	require.Contains(t, f.logs.failed["evt_4"], "duplicate key")
	require.Empty(t, f.logs.processed)
}

func TestProcessEvent_StrictIdempotency_SkipsProcessedEvent(t *testing.T) {
	cfg := testConfig()
	cfg.Webhook.StrictIdempotency = true
	h, f := newTestHandler(cfg)
	f.logs.seen["evt_5"] = true

	duplicate, err := h.ProcessEvent(context.Background(), evt("evt_5", stripe.EventTypeCheckoutSessionCompleted, paidSessionJSON))
	require.NoError(t, err)
	require.True(t, duplicate)

	require.Empty(t, f.logs.received)
	require.Empty(t, f.orders.created)
	require.Empty(t, f.customers.purchases)
}

func TestProcessEvent_SubscriptionCreated_SetsTierFromMetadata(t *testing.T) {
	h, f := newTestHandler(testConfig())

	raw := `{"id": "sub_1", "customer": "cus_9", "metadata": {"tier": "growth"}}`
	_, err := h.ProcessEvent(context.Background(), evt("evt_6", stripe.EventTypeCustomerSubscriptionCreated, raw))
	require.NoError(t, err)

	require.NotNil(t, f.customers.tiers["cus_9"])
	require.Equal(t, types.TierGrowth, *f.customers.tiers["cus_9"])
}

func TestProcessEvent_SubscriptionUpdated_ResolvesTierFromPrice(t *testing.T) {
	h, f := newTestHandler(testConfig())

	raw := `{"id": "sub_1", "customer": "cus_9", "items": {"data": [{"price": {"id": "price_growth"}}]}}`
	_, err := h.ProcessEvent(context.Background(), evt("evt_7", stripe.EventTypeCustomerSubscriptionUpdated, raw))
	require.NoError(t, err)

	require.NotNil(t, f.customers.tiers["cus_9"])
	require.Equal(t, types.TierGrowth, *f.customers.tiers["cus_9"])
}

func TestProcessEvent_SubscriptionWithUnknownPrice_NoTierChange(t *testing.T) {
	h, f := newTestHandler(testConfig())

	raw := `{"id": "sub_1", "customer": "cus_9", "items": {"data": [{"price": {"id": "price_legacy"}}]}}`
	_, err := h.ProcessEvent(context.Background(), evt("evt_8", stripe.EventTypeCustomerSubscriptionUpdated, raw))
	require.NoError(t, err)

	_, touched := f.customers.tiers["cus_9"]
	require.False(t, touched)
	require.Equal(t, []string{"evt_8"}, f.logs.processed)
}

func TestProcessEvent_SubscriptionDeleted_ClearsTierOnly(t *testing.T) {
	h, f := newTestHandler(testConfig())

	raw := `{"id": "sub_1", "customer": "cus_9"}`
	_, err := h.ProcessEvent(context.Background(), evt("evt_9", stripe.EventTypeCustomerSubscriptionDeleted, raw))
	require.NoError(t, err)

	tier, touched := f.customers.tiers["cus_9"]
	require.True(t, touched)
	require.Nil(t, tier)
}

func TestProcessEvent_PaymentIntentSucceeded_MarksOrderPaid(t *testing.T) {
	h, f := newTestHandler(testConfig())

	raw := `{"id": "pi_1", "metadata": {"stripe_session_id": "cs_1"}}`
	_, err := h.ProcessEvent(context.Background(), evt("evt_10", stripe.EventTypePaymentIntentSucceeded, raw))
	require.NoError(t, err)

	require.Equal(t, models.OrderStatusPaid, f.orders.statusUpdates["cs_1"])
}

func TestProcessEvent_PaymentIntentFailed_MarksOrderFailed(t *testing.T) {
	h, f := newTestHandler(testConfig())

	raw := `{"id": "pi_2", "metadata": {"stripe_session_id": "cs_1"}}`
	_, err := h.ProcessEvent(context.Background(), evt("evt_11", stripe.EventTypePaymentIntentPaymentFailed, raw))
	require.NoError(t, err)

	require.Equal(t, models.OrderStatusFailed, f.orders.statusUpdates["cs_1"])
}

func TestProcessEvent_PaymentIntentWithoutSession_Acknowledged(t *testing.T) {
	h, f := newTestHandler(testConfig())

	_, err := h.ProcessEvent(context.Background(), evt("evt_12", stripe.EventTypePaymentIntentSucceeded, `{"id": "pi_3"}`))
	require.NoError(t, err)

	require.Empty(t, f.orders.statusUpdates)
	require.Equal(t, []string{"evt_12"}, f.logs.processed)
}
