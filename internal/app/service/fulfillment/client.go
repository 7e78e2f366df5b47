package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/config"
	"github.com/brightharbor/storefront/pkg/logctx"
)

const requestTimeout = 5 * time.Second

// Client calls the downstream deliverables endpoint after a paid order.
// The short timeout keeps a slow fulfillment service from hanging webhook
// processing.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

func NewClient(cfg *config.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: cfg.Fulfillment.BaseURL,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

func (c *Client) Configured() bool { return c.baseURL != "" }

type deliveryRequest struct {
	OrderID         string `json:"order_id"`
	StripeSessionID string `json:"stripe_session_id"`
	CustomerEmail   string `json:"customer_email"`
	CustomerName    string `json:"customer_name"`
	PackageType     string `json:"package_type"`
}

// RequestDelivery asks the fulfillment service to start preparing the
// order's deliverables.
func (c *Client) RequestDelivery(ctx context.Context, o *models.Order) error {
	if !c.Configured() {
		return fmt.Errorf("fulfillment service not configured")
	}

	payload, err := json.Marshal(deliveryRequest{
		OrderID:         o.ID,
		StripeSessionID: o.StripeSessionID,
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		PackageType:     o.PackageType,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal delivery request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/deliverables", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fulfillment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fulfillment request returned status %d", resp.StatusCode)
	}
	logctx.FromCtx(ctx, c.log).Infow("fulfillment_requested", "order_id", o.ID)
	return nil
}
