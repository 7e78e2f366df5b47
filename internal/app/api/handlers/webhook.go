package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	wh "github.com/brightharbor/storefront/internal/app/service/webhook_handler"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/response"
)

const webhookBodyLimit = 1 << 20 // 1MiB

// @Summary      Stripe Webhook
// @Description  Handles Stripe webhook deliveries. The raw body is verified against the Stripe-Signature header before any processing.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Received
// @Failure      400  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/v1/webhooks/stripe [post]
func ApiStripeWebhook(h *wh.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, h.Logger)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit)
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Err("failed to read request body"))
			return
		}

		event, err := h.VerifyAndParse(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, wh.ErrNotConfigured) {
				lg.Errorw("webhook_not_configured")
				c.JSON(http.StatusInternalServerError, response.Err("webhook handler not configured"))
				return
			}
			// An unverified delivery is never trusted enough to log its type.
			lg.Warnw("webhook_signature_rejected", "err", err)
			c.JSON(http.StatusBadRequest, response.Err("invalid signature"))
			return
		}

		duplicate, err := h.ProcessEvent(c.Request.Context(), event)
		if err != nil {
			// 500 signals the provider to redeliver; detail stays server-side.
			c.JSON(http.StatusInternalServerError, response.Err("webhook processing failed"))
			return
		}
		if duplicate {
			c.JSON(http.StatusOK, response.Duplicate())
			return
		}
		c.JSON(http.StatusOK, response.OKReceived())
	}
}

func RegisterWebhookRoutes(r gin.IRouter, h *wh.Handler) {
	r.POST("/stripe", ApiStripeWebhook(h))
}
