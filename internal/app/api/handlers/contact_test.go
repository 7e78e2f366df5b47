package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightharbor/storefront/internal/models"
)

type fakeLeadStore struct {
	created []*models.ContactSubmission
}

func (f *fakeLeadStore) Create(_ context.Context, sub *models.ContactSubmission) error {
	f.created = append(f.created, sub)
	return nil
}

type fakeContactMailer struct {
	acks     int
	notifies int
}

func (f *fakeContactMailer) SendContactAck(_ context.Context, _ *models.ContactSubmission) error {
	f.acks++
	return nil
}

func (f *fakeContactMailer) SendContactNotify(_ context.Context, _ *models.ContactSubmission) error {
	f.notifies++
	return nil
}

func postContactWith(t *testing.T, svc LeadStore, mail ContactMailer, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/contact", ApiSubmitContact(svc, mail, zap.NewNop().Sugar()))

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Binding failures return before the services are touched.
func postContact(t *testing.T, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	return postContactWith(t, nil, nil, body)
}

func TestApiSubmitContact_SavesLeadAndSendsEmail(t *testing.T) {
	store := &fakeLeadStore{}
	mail := &fakeContactMailer{}
	w := postContactWith(t, store, mail, map[string]any{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": "I would like to discuss a project with your team.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"success":true`)

	require.Len(t, store.created, 1)
	require.Equal(t, "jane@example.com", store.created[0].Email)
	require.Equal(t, 1, mail.acks)
	require.Equal(t, 1, mail.notifies)
}

func TestApiSubmitContact_MessageAtMaxLength(t *testing.T) {
	store := &fakeLeadStore{}
	w := postContactWith(t, store, &fakeContactMailer{}, map[string]any{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": strings.Repeat("a", 1000),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.created, 1)
	require.Len(t, store.created[0].Message, 1000)
}

func TestApiSubmitContact_MessageTooShort(t *testing.T) {
	w := postContact(t, map[string]any{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": "too short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"message":"failed min validation"`)
}

func TestApiSubmitContact_MessageTooLong(t *testing.T) {
	w := postContact(t, map[string]any{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": strings.Repeat("a", 1001),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"message":"failed max validation"`)
}

func TestApiSubmitContact_InvalidEmail(t *testing.T) {
	w := postContact(t, map[string]any{
		"name":    "Jane Doe",
		"email":   "not-an-email",
		"message": "I would like to discuss a project with your team.",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"email":"failed email validation"`)
}

func TestApiSubmitContact_InvalidPhone(t *testing.T) {
	w := postContact(t, map[string]any{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"phone":   "555-1234",
		"message": "I would like to discuss a project with your team.",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"phone":"failed e164 validation"`)
}

func TestApiSubmitContact_MissingName(t *testing.T) {
	w := postContact(t, map[string]any{
		"email":   "jane@example.com",
		"message": "I would like to discuss a project with your team.",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"name":"failed required validation"`)
}
