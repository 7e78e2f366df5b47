package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	wh "github.com/brightharbor/storefront/internal/app/service/webhook_handler"
	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/config"
)

type recordingLogStore struct {
	received  []*models.WebhookLog
	processed []string
}

func (r *recordingLogStore) LogReceived(_ context.Context, entry *models.WebhookLog) {
	r.received = append(r.received, entry)
}

func (r *recordingLogStore) MarkProcessed(_ context.Context, eventID string) {
	r.processed = append(r.processed, eventID)
}

func (r *recordingLogStore) MarkFailed(_ context.Context, _, _ string) {}

func (r *recordingLogStore) HasProcessed(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func signPayload(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookRouter(secret string) (*gin.Engine, *recordingLogStore) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = secret

	logs := &recordingLogStore{}
	// Unreached stores stay nil; the routed event type has no side effects.
	h := wh.NewHandler(cfg, logs, nil, nil, nil, nil, zap.NewNop().Sugar())

	r := gin.New()
	RegisterWebhookRoutes(r.Group("/api/v1/webhooks"), h)
	return r, logs
}

func TestApiStripeWebhook_ValidSignature(t *testing.T) {
	const secret = "whsec_test"
	r, logs := newWebhookRouter(secret)

	payload := []byte(`{"id": "evt_1", "type": "charge.refunded", "data": {"object": {}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(secret, payload))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"received":true`)

	require.Len(t, logs.received, 1)
	require.Equal(t, "evt_1", logs.received[0].EventID)
	require.Equal(t, []string{"evt_1"}, logs.processed)
}

func TestApiStripeWebhook_BadSignature(t *testing.T) {
	r, logs := newWebhookRouter("whsec_test")

	payload := []byte(`{"id": "evt_1", "type": "charge.refunded", "data": {"object": {}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload("whsec_wrong", payload))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid signature")

	// Unverified deliveries leave no trace in the log.
	require.Empty(t, logs.received)
}

func TestApiStripeWebhook_MissingSignatureHeader(t *testing.T) {
	r, logs := newWebhookRouter("whsec_test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, logs.received)
}

func TestApiStripeWebhook_SecretNotConfigured(t *testing.T) {
	r, _ := newWebhookRouter("")

	payload := []byte(`{"id": "evt_1", "type": "charge.refunded", "data": {"object": {}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload("whsec_test", payload))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "not configured")
}
