package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"game_store_backend/internal/middleware"
	"game_store_backend/internal/models"
	"game_store_backend/internal/services"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Next()
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error utils.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRespondServiceError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: id 4", services.ErrClientNotFound), http.StatusNotFound, utils.ErrCodeNotFound},
		{services.ErrReservationConflict, http.StatusConflict, utils.ErrCodeConflict},
		{fmt.Errorf("%w: bad phone", services.ErrClientValidation), http.StatusBadRequest, utils.ErrCodeValidationFailed},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, utils.ErrCodeUnauthorized},
		{services.ErrCannotDeleteSelf, http.StatusForbidden, utils.ErrCodeForbidden},
		{services.ErrNotifyTimeout, http.StatusGatewayTimeout, utils.ErrCodeGatewayTimeout},
		{services.ErrCartUnavailable, http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, utils.ErrCodeInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { respondServiceError(c, tc.err, "test", "failed") })
			rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

type fakeProducts struct {
	services.ProductService
	rows    []models.Product
	filters models.ProductFilters
}

func (f *fakeProducts) ListProducts(_ context.Context, filters models.ProductFilters) ([]models.Product, int, error) {
	f.filters = filters
	return f.rows, len(f.rows), nil
}

func (f *fakeProducts) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			p := f.rows[i]
			return &p, nil
		}
	}
	return nil, services.ErrProductNotFound
}

func TestPublicProducts_HideDigitalContentAndInactive(t *testing.T) {
	fp := &fakeProducts{rows: []models.Product{
		{ID: 1, Name: "PSN 50", IsActive: true, DigitalContent: utils.Ptr("CODE-123")},
		{ID: 2, Name: "Retired", IsActive: false},
	}}
	h := NewInventoryHandler(fp, nil)
	r := gin.New()
	r.GET("/public/products", h.ListPublicProducts)
	r.GET("/public/products/:id", h.GetPublicProduct)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/public/products?category=cards", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "CODE-123")
	assert.True(t, fp.filters.ActiveOnly)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/public/products/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "digital_content")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/public/products/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/public/products/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeSettings struct {
	services.SettingService
	key       string
	value     json.RawMessage
	updatedBy int64
}

func (f *fakeSettings) Upsert(_ context.Context, key string, value json.RawMessage, updatedBy int64) (*models.StoreSetting, error) {
	f.key, f.value, f.updatedBy = key, value, updatedBy
	return &models.StoreSetting{Key: key, Value: value}, nil
}

func (f *fakeSettings) Theme(context.Context) (models.Theme, error) {
	return models.Theme{Primary: "#111", Secondary: "#222", Accent: "#333"}, nil
}

func TestUpsertSetting(t *testing.T) {
	fs := &fakeSettings{}
	h := NewSettingHandler(fs)
	r := gin.New()
	r.PUT("/settings/:key", asUser(7), h.UpsertSetting)
	r.GET("/theme", h.Theme)

	rec := serve(r, httptest.NewRequest(http.MethodPut, "/settings/store_name", strings.NewReader(`{"oops"`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fs.key)

	rec = serve(r, httptest.NewRequest(http.MethodPut, "/settings/store_name", strings.NewReader(`"Game Store Zarzis"`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store_name", fs.key)
	assert.Equal(t, int64(7), fs.updatedBy)
	assert.JSONEq(t, `"Game Store Zarzis"`, string(fs.value))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/theme", nil))
	assert.JSONEq(t, `{"primary":"#111","secondary":"#222","accent":"#333"}`, rec.Body.String())
}

type fakeContact struct{ err error }

func (f fakeContact) Send(context.Context, services.ContactRequest) error { return f.err }

func TestSendContact(t *testing.T) {
	body := `{"name":"Amine","email":"amine@example.com","message":"Bonjour"}`

	r := gin.New()
	r.POST("/contact", NewContentHandler(nil, fakeContact{}).SendContact)
	rec := serve(r, httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)

	r = gin.New()
	r.POST("/contact", NewContentHandler(nil, fakeContact{err: services.ErrNotifyTimeout}).SendContact)
	rec = serve(r, httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body)))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

type fakeStats struct {
	services.StatsService
	from, to time.Time
}

func (f *fakeStats) Analytics(_ context.Context, from, to time.Time) (*models.AnalyticsSummary, error) {
	f.from, f.to = from, to
	return &models.AnalyticsSummary{From: from, To: to}, nil
}

func TestAnalytics_Range(t *testing.T) {
	fs := &fakeStats{}
	h := NewReportHandler(fs, nil)
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)
	h.now = func() time.Time { return now }
	r := gin.New()
	r.GET("/stats/analytics", h.Analytics)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/stats/analytics?from=2025-03-01&to=2025-03-10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), fs.from)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local), fs.to)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/stats/analytics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now, fs.to)
	assert.Equal(t, now.Add(-defaultAnalyticsWindow), fs.from)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/stats/analytics?from=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAdmin struct {
	services.AdminService
	req services.CleanupRequest
}

func (f *fakeAdmin) Cleanup(_ context.Context, req services.CleanupRequest) (*models.CleanupResult, error) {
	f.req = req
	if req.DaysToKeep < 30 {
		return nil, services.ErrCleanupValidation
	}
	return &models.CleanupResult{Status: "completed"}, nil
}

func TestAdminCleanup(t *testing.T) {
	fa := &fakeAdmin{}
	r := gin.New()
	r.DELETE("/admin/cleanup", NewAdminHandler(fa).Cleanup)

	rec := serve(r, httptest.NewRequest(http.MethodDelete, "/admin/cleanup", strings.NewReader(`{"days_to_keep":120,"tables":["sales"]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.CleanupRequest{DaysToKeep: 120, Tables: []string{"sales"}}, fa.req)

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/cleanup", strings.NewReader(`{"days_to_keep":3}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeValidationFailed, errorCode(t, rec))

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/cleanup", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlatform_HealthAndRealtime(t *testing.T) {
	h := NewPlatformHandler(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}, nil)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/realtime", h.Realtime)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"up","redis":"down"}}`, rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/realtime?tables=sessions", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
