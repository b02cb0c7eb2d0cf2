package notifier

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "notifier-test-secret"

type fakeMailer struct {
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type memLog struct{ entries []Delivery }

func (l *memLog) Record(_ context.Context, d Delivery) error {
	l.entries = append(l.entries, d)
	return nil
}

func newTestService(m Mailer, l DeliveryLog) *Service {
	return NewService(m, l, Options{
		StoreEmail:   "store@example.com",
		ResetBaseURL: "https://shop.example.com/reset-password",
	})
}

func TestDispatch_ContactFormGoesToStoreAndEscapesHTML(t *testing.T) {
	m := &fakeMailer{}
	log := &memLog{}
	svc := newTestService(m, log)

	raw := []byte(`{"from_name":"Amine","from_email":"amine@example.com","subject":"Hi","message":"<script>x</script>"}`)
	require.NoError(t, svc.Dispatch(context.Background(), notify.KindContactForm, "http", raw))

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "store@example.com", msg.To)
	assert.Equal(t, "Nouveau Message: Hi", msg.Subject)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.Text, "<script>x</script>")

	require.Len(t, log.entries, 1)
	assert.True(t, log.entries[0].Success)
	assert.Equal(t, "http", log.entries[0].Source)
}

func TestDispatch_PasswordResetBuildsLink(t *testing.T) {
	m := &fakeMailer{}
	svc := newTestService(m, nil)

	raw := []byte(`{"email":"staff@example.com","lang":"en","token":"12.ab cd"}`)
	require.NoError(t, svc.Dispatch(context.Background(), notify.KindPasswordReset, "nats", raw))

	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].Text, "https://shop.example.com/reset-password?token=12.ab+cd")
	assert.True(t, strings.HasPrefix(m.sent[0].Subject, "Reset your password"))
}

func TestDispatch_ServiceRequestDefaultsToPending(t *testing.T) {
	m := &fakeMailer{}
	svc := newTestService(m, nil)

	raw := []byte(`{"client_name":"Sami","client_phone":"+21698765432","device_type":"PS5","issue_description":"HDMI","request_id":"1234567890"}`)
	require.NoError(t, svc.Dispatch(context.Background(), notify.KindServiceRequest, "http", raw))
	assert.Equal(t, "[Nouvelle Demande] Service #12345678", m.sent[0].Subject)
}

func TestDispatch_Rejections(t *testing.T) {
	svc := newTestService(&fakeMailer{}, nil)
	ctx := context.Background()

	err := svc.Dispatch(ctx, "sms", "http", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	err = svc.Dispatch(ctx, notify.KindSessionReceipt, "http", []byte(`{"client_email":"nope"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = svc.Dispatch(ctx, notify.KindStaffInvitation, "http", []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDispatch_MailerFailureIsLogged(t *testing.T) {
	log := &memLog{}
	svc := newTestService(&fakeMailer{err: errors.New("smtp down")}, log)

	raw := []byte(`{"email":"new@example.com","role":"worker","password":"Abcdefgh2345"}`)
	err := svc.Dispatch(context.Background(), notify.KindStaffInvitation, "http", raw)
	require.Error(t, err)
	require.Len(t, log.entries, 1)
	assert.False(t, log.entries[0].Success)
	assert.Equal(t, "smtp down", log.entries[0].Error)
}

func TestSMTPMailer_BuildsMultipartMessage(t *testing.T) {
	var gotTo []string
	var gotBody []byte
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "noreply@example.com", FromName: "Game Store"})
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		assert.Equal(t, "noreply@example.com", from)
		gotTo, gotBody = to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "Reçu", Text: "plain", HTML: "<p>html</p>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	assert.True(t, bytes.Contains(gotBody, []byte("multipart/alternative")))
	assert.True(t, bytes.Contains(gotBody, []byte("=?utf-8?q?Re=C3=A7u?=")))
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	err := NewSMTPMailer(SMTPConfig{}).Send(context.Background(), Message{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

func TestRouter_RequiresServiceToken(t *testing.T) {
	m := &fakeMailer{}
	router := NewRouter(NewHandler(newTestService(m, nil), testSecret), RouterConfig{})
	body := `{"from_name":"A","from_email":"a@example.com","subject":"s","message":"m"}`

	req := httptest.NewRequest(http.MethodPost, "/email/contact-form", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := utils.GenerateServiceToken(testSecret, time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/email/contact-form", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Email sent"}`, rec.Body.String())
	assert.Len(t, m.sent, 1)
}

func TestRouter_RejectsUserToken(t *testing.T) {
	router := NewRouter(NewHandler(newTestService(&fakeMailer{}, nil), testSecret), RouterConfig{})
	tokens := utils.NewTokenManager(testSecret, time.Minute, time.Hour)
	token, err := tokens.GenerateAccessToken(1, "owner@example.com", "owner")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/email/contact-form", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_BadPayloadAndFailure(t *testing.T) {
	token, err := utils.GenerateServiceToken(testSecret, time.Minute)
	require.NoError(t, err)

	router := NewRouter(NewHandler(newTestService(&fakeMailer{err: errors.New("down")}, nil), testSecret), RouterConfig{})
	req := httptest.NewRequest(http.MethodPost, "/email/session-receipt", strings.NewReader(`{"client_email":"x"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/email/session-receipt", strings.NewReader(`{"client_email":"c@example.com","total_amount":12.5}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to send email"}`, rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	router := NewRouter(NewHandler(newTestService(&fakeMailer{}, nil), testSecret), RouterConfig{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
