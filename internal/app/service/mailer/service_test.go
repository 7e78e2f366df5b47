package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/config"
)

func TestSend_NotConfigured(t *testing.T) {
	svc := NewService(&config.Config{}, nil, zap.NewNop().Sugar())

	err := svc.SendContactAck(context.Background(), &models.ContactSubmission{
		Name: "Jane Doe", Email: "jane@example.com",
	})
	require.True(t, errors.Is(err, ErrNotConfigured))
}

func TestSendContactNotify_NoAdminEmail(t *testing.T) {
	svc := NewService(&config.Config{}, nil, zap.NewNop().Sugar())

	err := svc.SendContactNotify(context.Background(), &models.ContactSubmission{})
	require.True(t, errors.Is(err, ErrNotConfigured))
}

func TestTemplates_Render(t *testing.T) {
	var buf bytes.Buffer
	err := bodies[TemplateOrderKickoff].Execute(&buf, map[string]any{
		"Name":        "Jane Doe",
		"PackageName": "Strategy Sprint",
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Jane Doe")
	require.Contains(t, buf.String(), "Strategy Sprint")

	buf.Reset()
	phone := "+15551234567"
	err = bodies[TemplateContactNotify].Execute(&buf, map[string]any{
		"Name":    "Jane Doe",
		"Email":   "jane@example.com",
		"Phone":   &phone,
		"Topic":   (*string)(nil),
		"Source":  "website",
		"Message": "Hello there.",
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "jane@example.com")
	require.Contains(t, buf.String(), "+15551234567")
	require.NotContains(t, buf.String(), "Topic:")
}

func TestTemplates_EverySubjectHasBody(t *testing.T) {
	for name := range subjects {
		require.Contains(t, bodies, name)
	}
	for name := range bodies {
		require.Contains(t, subjects, name)
	}
}
