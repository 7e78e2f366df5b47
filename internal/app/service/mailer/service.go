package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/config"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/tool"
)

// ErrNotConfigured is returned when SMTP settings are absent. Callers fail
// closed rather than silently skipping the send.
var ErrNotConfigured = errors.New("email service not configured")

// Dialer abstracts gomail's SMTP dialer so tests can substitute a fake.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Message struct {
	To       string
	Template string
	Data     any
	Metadata map[string]any
}

// Service renders and sends transactional email over SMTP, recording one
// EmailLog row per attempt.
type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	log    *zap.SugaredLogger
	dialer Dialer
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	s := &Service{cfg: cfg, db: db, log: log}
	if cfg.SMTP.Configured() {
		s.dialer = gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
	} else {
		log.Warnw("smtp not configured; transactional email disabled")
	}
	return s
}

// WithDialer substitutes the SMTP dialer, for tests.
func (s *Service) WithDialer(d Dialer) *Service {
	s.dialer = d
	return s
}

// Send renders the named template and delivers it, writing an EmailLog row
// for the attempt. Missing SMTP configuration returns ErrNotConfigured.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	tmpl, ok := bodies[msg.Template]
	if !ok {
		return fmt.Errorf("unknown email template: %s", msg.Template)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, msg.Data); err != nil {
		return fmt.Errorf("failed to render email template %s: %w", msg.Template, err)
	}

	entry := &models.EmailLog{
		ID:        tool.GenerateUUIDV7(),
		Recipient: msg.To,
		Subject:   subjects[msg.Template],
		Template:  msg.Template,
		Status:    models.EmailStatusPending,
	}
	if msg.Metadata != nil {
		if raw, err := json.Marshal(msg.Metadata); err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		// Log-write failure must not block the send itself.
		logctx.FromCtx(ctx, s.log).Errorw("failed to save email log", "recipient", msg.To, "err", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTP.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", subjects[msg.Template])
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		s.updateLog(ctx, entry.ID, models.EmailStatusFailed, err.Error())
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.updateLog(ctx, entry.ID, models.EmailStatusSent, "")
	return nil
}

func (s *Service) updateLog(ctx context.Context, id string, status models.EmailStatus, errMsg string) {
	updates := map[string]interface{}{"status": status}
	if status == models.EmailStatusSent {
		now := time.Now()
		updates["sent_at"] = &now
	}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	err := s.db.WithContext(ctx).Model(&models.EmailLog{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to update email log", "id", id, "err", err)
	}
}

// SendOrderKickoff notifies the buyer that deliverable preparation started.
func (s *Service) SendOrderKickoff(ctx context.Context, o *models.Order, packageName string) error {
	return s.Send(ctx, Message{
		To:       o.CustomerEmail,
		Template: TemplateOrderKickoff,
		Data: map[string]any{
			"Name":        o.CustomerName,
			"PackageName": packageName,
		},
		Metadata: map[string]any{"order_id": o.ID, "stripe_session_id": o.StripeSessionID},
	})
}

// SendContactAck acknowledges a contact form submission to the submitter.
func (s *Service) SendContactAck(ctx context.Context, sub *models.ContactSubmission) error {
	return s.Send(ctx, Message{
		To:       sub.Email,
		Template: TemplateContactAck,
		Data:     map[string]any{"Name": sub.Name},
		Metadata: map[string]any{"contact_submission_id": sub.ID},
	})
}

// SendContactNotify forwards the submission to the configured admin address.
func (s *Service) SendContactNotify(ctx context.Context, sub *models.ContactSubmission) error {
	if s.cfg.AdminEmail == "" {
		return ErrNotConfigured
	}
	return s.Send(ctx, Message{
		To:       s.cfg.AdminEmail,
		Template: TemplateContactNotify,
		Data: map[string]any{
			"Name":    sub.Name,
			"Email":   sub.Email,
			"Phone":   sub.Phone,
			"Topic":   sub.Topic,
			"Source":  sub.Source,
			"Message": sub.Message,
		},
		Metadata: map[string]any{"contact_submission_id": sub.ID},
	})
}
