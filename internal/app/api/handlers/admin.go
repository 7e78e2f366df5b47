package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	contactsvc "github.com/brightharbor/storefront/internal/app/service/contact"
	ordersvc "github.com/brightharbor/storefront/internal/app/service/order"
	"github.com/brightharbor/storefront/internal/app/service/statistics"
	"github.com/brightharbor/storefront/internal/app/service/webhook_log"
	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/response"
)

// @Summary      List Orders (Admin)
// @Description  Retrieves a paginated and filterable list of orders.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body order.ListRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  response.Result[order.ListResponse]
// @Router       /api/v1/admin/orders/list [post]
func ApiListOrders(svc *ordersvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ordersvc.ListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Err("invalid request body"))
			return
		}
		res, err := svc.List(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("order_list_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.Err("failed to list orders"))
			return
		}
		c.JSON(http.StatusOK, response.OK("", res))
	}
}

// @Summary      List Contact Submissions (Admin)
// @Description  Retrieves a paginated and filterable list of leads.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body contact.ListRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  response.Result[contact.ListResponse]
// @Router       /api/v1/admin/contacts/list [post]
func ApiListContacts(svc *contactsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req contactsvc.ListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Err("invalid request body"))
			return
		}
		res, err := svc.List(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("contact_list_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.Err("failed to list contact submissions"))
			return
		}
		c.JSON(http.StatusOK, response.OK("", res))
	}
}

type UpdateContactStatusRequest struct {
	Status     models.ContactStatus `json:"status" binding:"required,oneof=new contacted qualified closed"`
	AssignedTo *string              `json:"assigned_to"`
	Notes      *string              `json:"notes"`
}

// @Summary      Update Contact Status (Admin)
// @Description  Advances a lead through the pipeline.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact submission ID"
// @Param        request body UpdateContactStatusRequest true "Status update"
// @Success      200  {object}  response.Result[any]
// @Router       /api/v1/admin/contacts/{id}/status [post]
func ApiUpdateContactStatus(svc *contactsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateContactStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrWithDetails("validation failed", fieldErrors(err)))
			return
		}
		err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.AssignedTo, req.Notes)
		if err != nil {
			logctx.FromGin(c, log).Errorw("contact_status_update_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.Err("failed to update contact status"))
			return
		}
		c.JSON(http.StatusOK, response.OK[any]("status updated", nil))
	}
}

// @Summary      Dashboard Statistics (Admin)
// @Description  Computes the requested dashboard aggregations from the database.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.DashboardStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  response.Result[statistics.DashboardStatisticResponse]
// @Router       /api/v1/admin/statistics [post]
func ApiGetDashboardStatistic(svc *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.DashboardStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Err("invalid request body"))
			return
		}
		res, err := svc.GetDashboardStatistic(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, statistics.ErrInvalidRequest) {
				c.JSON(http.StatusBadRequest, response.Err("invalid statistic request"))
				return
			}
			logctx.FromGin(c, log).Errorw("dashboard_statistic_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.Err("failed to compute statistics"))
			return
		}
		c.JSON(http.StatusOK, response.OK("", res))
	}
}

// @Summary      Recent Webhook Deliveries (Admin)
// @Description  Returns the newest webhook log rows for debugging.
// @Tags         Admin
// @Produce      json
// @Param        limit query int false "Max rows to return"
// @Success      200  {object}  response.Result[[]models.WebhookLog]
// @Router       /api/v1/admin/webhooks/recent [get]
func ApiRecentWebhooks(svc *webhook_log.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		rows, err := svc.Recent(c.Request.Context(), limit)
		if err != nil {
			logctx.FromGin(c, log).Errorw("recent_webhooks_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.Err("failed to list webhook logs"))
			return
		}
		c.JSON(http.StatusOK, response.OK("", rows))
	}
}

func RegisterAdminRoutes(
	r gin.IRouter,
	orders *ordersvc.Service,
	contacts *contactsvc.Service,
	stats *statistics.Service,
	logs *webhook_log.Service,
	log *zap.SugaredLogger,
) {
	r.POST("/orders/list", ApiListOrders(orders, log))
	r.POST("/contacts/list", ApiListContacts(contacts, log))
	r.POST("/contacts/:id/status", ApiUpdateContactStatus(contacts, log))
	r.POST("/statistics", ApiGetDashboardStatistic(stats, log))
	r.GET("/webhooks/recent", ApiRecentWebhooks(logs, log))
}
