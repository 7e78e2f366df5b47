package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightharbor/storefront/internal/app/service/mailer"
	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/response"
)

// Dependency surfaces of the contact endpoint. The concrete services satisfy
// these; tests substitute fakes.

type LeadStore interface {
	Create(ctx context.Context, sub *models.ContactSubmission) error
}

type ContactMailer interface {
	SendContactAck(ctx context.Context, sub *models.ContactSubmission) error
	SendContactNotify(ctx context.Context, sub *models.ContactSubmission) error
}

type ContactRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=100"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone" binding:"omitempty,e164"`
	Topic   *string `json:"topic" binding:"omitempty,max=128"`
	Message string  `json:"message" binding:"required,min=10,max=1000"`
	Source  string  `json:"source"`
}

// fieldErrors flattens validator failures into a field→reason map so the
// form can highlight the offending inputs.
func fieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[strings.ToLower(fe.Field())] = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return out
}

// @Summary      Contact form
// @Description  Accepts a contact/discovery form submission and records it as a lead.
// @Tags         Contact
// @Accept       json
// @Produce      json
// @Param        request body ContactRequest true "Contact form fields"
// @Success      200  {object}  response.Result[models.ContactSubmission]
// @Failure      400  {object}  response.ErrorBody
// @Router       /api/v1/contact [post]
func ApiSubmitContact(svc LeadStore, mail ContactMailer, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)

		var req ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrWithDetails("validation failed", fieldErrors(err)))
			return
		}

		sub := &models.ContactSubmission{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Topic:   req.Topic,
			Message: req.Message,
			Source:  req.Source,
		}
		if err := svc.Create(c.Request.Context(), sub); err != nil {
			lg.Errorw("contact_submission_save_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.Err("failed to save submission"))
			return
		}

		if err := mail.SendContactAck(c.Request.Context(), sub); err != nil {
			if errors.Is(err, mailer.ErrNotConfigured) {
				c.JSON(http.StatusInternalServerError, response.Err("email service not configured"))
				return
			}
			// The lead is saved; a transient SMTP failure should not lose it.
			lg.Errorw("contact_ack_email_failed", "err", err)
		}
		if err := mail.SendContactNotify(c.Request.Context(), sub); err != nil && !errors.Is(err, mailer.ErrNotConfigured) {
			lg.Errorw("contact_notify_email_failed", "err", err)
		}

		c.JSON(http.StatusOK, response.OK("contact submission received", sub))
	}
}

func RegisterContactRoutes(r gin.IRouter, svc LeadStore, mail ContactMailer, log *zap.SugaredLogger) {
	r.POST("/contact", ApiSubmitContact(svc, mail, log))
}
