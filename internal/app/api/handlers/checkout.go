package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	checkoutsvc "github.com/brightharbor/storefront/internal/app/service/checkout"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/response"
)

type SessionURLResponse struct {
	URL string `json:"url"`
}

// @Summary      Create checkout session
// @Description  Creates a hosted checkout session for a configured offering and returns its URL.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body checkout.CreateSessionRequest true "Checkout session request"
// @Success      200  {object}  handlers.SessionURLResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/v1/checkout/session [post]
func ApiCreateCheckoutSession(svc *checkoutsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)

		var req checkoutsvc.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrWithDetails("validation failed", fieldErrors(err)))
			return
		}

		url, err := svc.CreateSession(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, checkoutsvc.ErrUnknownOffering):
				c.JSON(http.StatusBadRequest, response.Err("unknown offering"))
			case errors.Is(err, checkoutsvc.ErrNotConfigured):
				c.JSON(http.StatusInternalServerError, response.Err("payment service not configured"))
			default:
				lg.Errorw("checkout_session_failed", "err", err)
				c.JSON(http.StatusInternalServerError, response.Err("failed to create checkout session"))
			}
			return
		}
		c.JSON(http.StatusOK, SessionURLResponse{URL: url})
	}
}

// @Summary      Create customer portal session
// @Description  Creates a hosted subscription-management portal session for an existing customer.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body checkout.CreatePortalRequest true "Portal session request"
// @Success      200  {object}  handlers.SessionURLResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/v1/checkout/portal [post]
func ApiCreatePortalSession(svc *checkoutsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)

		var req checkoutsvc.CreatePortalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrWithDetails("validation failed", fieldErrors(err)))
			return
		}

		url, err := svc.CreatePortal(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, checkoutsvc.ErrNotConfigured) {
				c.JSON(http.StatusInternalServerError, response.Err("payment service not configured"))
				return
			}
			lg.Errorw("portal_session_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.Err("failed to create portal session"))
			return
		}
		c.JSON(http.StatusOK, SessionURLResponse{URL: url})
	}
}

// @Summary      List offerings
// @Description  Returns the configured offering catalog for the marketing pages.
// @Tags         Checkout
// @Produce      json
// @Success      200  {object}  response.Result[[]types.Offering]
// @Router       /api/v1/offerings [get]
func ApiListOfferings(svc *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OK("", svc.Offerings()))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, svc *checkoutsvc.Service, log *zap.SugaredLogger) {
	r.POST("/checkout/session", ApiCreateCheckoutSession(svc, log))
	r.POST("/checkout/portal", ApiCreatePortalSession(svc, log))
	r.GET("/offerings", ApiListOfferings(svc))
}
