package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"inquiry-backend/config"
	"inquiry-backend/internal/delivery/http/middleware"
	v1 "inquiry-backend/internal/delivery/http/v1"
	"inquiry-backend/internal/domain"
	"inquiry-backend/internal/repository/memory"
	"inquiry-backend/internal/usecase"
	"inquiry-backend/pkg/export"
	"inquiry-backend/pkg/i18n"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	err   error
	calls []domain.TemplateParams
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, params domain.TemplateParams) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, params)
	return d.err
}

func (d *fakeDispatcher) IsConfigured() bool { return true }

type fakeVerifier struct {
	valid string
}

func (v fakeVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if token != v.valid {
		return domain.ErrVerificationRejected
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	router     *gin.Engine
	dispatcher *fakeDispatcher
	archive    *memory.InquiryRepository
}

func newTestServer(t *testing.T, verify bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	locale, err := i18n.New(i18n.DefaultLang)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		GinMode:                   gin.TestMode,
		AllowedOrigins:            []string{"https://ratraco.example"},
		RateLimitWindowSeconds:    60,
		RateLimitInquiryThreshold: 100,
		RateLimitGlobalThreshold:  1000,
	}

	s := &testServer{
		dispatcher: &fakeDispatcher{},
		archive:    memory.NewInquiryRepository(50),
	}
	deps := usecase.InquiryDeps{
		Dispatcher: s.dispatcher,
		Attempts:   memory.NewAttemptStore(time.Hour),
		Markers:    memory.NewMarkerStore(time.Minute),
		Archive:    s.archive,
		Locale:     locale,
		Config:     usecase.SequencerConfig{VerificationRequired: verify},
	}
	if verify {
		deps.Verifier = fakeVerifier{valid: "good-token"}
	}

	s.router = v1.NewRouter(v1.RouterDeps{
		InquiryUC: usecase.NewInquiryUsecase(deps),
		AdminUC: usecase.NewAdminUsecase(s.archive, usecase.AdminConfig{
			Username:     "staff",
			PasswordHash: string(hash),
			JWTSecret:    "test-secret",
		}),
		HealthUC:    usecase.NewHealthUsecase(nil),
		Locale:      locale,
		RateLimiter: middleware.NewRateLimiter(nil),
		Config:      cfg,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func formBody() map[string]string {
	return map[string]string{
		"user_name":             "Nguyen Van A",
		"user_company":          "Ratraco",
		"user_email":            "a@example.com",
		"user_phone":            "0912 345 678",
		"pol_pod":               "Hai Phong / Busan",
		"commodity_description": "Steel coils HS 7208",
	}
}

func TestInquiryRoutes(t *testing.T) {
	t.Run("Should dispatch and leave a marker for the client", func(t *testing.T) {
		s := newTestServer(t, false)

		w, env := s.do(t, http.MethodPost, "/v1/inquiries", formBody(), nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.True(t, env.Success)
		assert.Contains(t, env.Message, "submitted successfully")

		var view domain.AttemptView
		require.NoError(t, json.Unmarshal(env.Data, &view))
		assert.Equal(t, domain.StateSucceeded, view.State)
		assert.True(t, view.Input.IsZero())
		require.Len(t, s.dispatcher.calls, 1)
		assert.Equal(t, "0912 345 678", s.dispatcher.calls[0]["user_phone"])

		clientID := w.Header().Get(middleware.ClientIDHeader)
		require.NotEmpty(t, clientID)

		w, env = s.do(t, http.MethodGet, "/v1/inquiries/marker", nil, map[string]string{middleware.ClientIDHeader: clientID})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"submitted":true}`, string(env.Data))

		_, env = s.do(t, http.MethodGet, "/v1/inquiries/marker", nil, map[string]string{middleware.ClientIDHeader: clientID})
		assert.JSONEq(t, `{"submitted":false}`, string(env.Data))
	})

	t.Run("Should reject an empty field with a localized message", func(t *testing.T) {
		s := newTestServer(t, false)
		body := formBody()
		body["user_name"] = "  "
		body["user_email"] = "broken"

		w, env := s.do(t, http.MethodPost, "/v1/inquiries?lang=vi", body, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.NotEqual(t, "validation.nameEmpty", env.Message)

		var view domain.AttemptView
		require.NoError(t, json.Unmarshal(env.Error, &view))
		assert.Equal(t, "user_name", view.Failure.Field)
		assert.Equal(t, "broken", view.Input.Email)
		assert.Empty(t, s.dispatcher.calls)
	})

	t.Run("Should report the provider's error and keep the form", func(t *testing.T) {
		s := newTestServer(t, false)
		s.dispatcher.err = &domain.DispatchError{Reason: "Invalid template"}

		w, env := s.do(t, http.MethodPost, "/v1/inquiries", formBody(), map[string]string{"Accept-Language": "en-US"})
		require.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, env.Message, "Error: Invalid template")

		var view domain.AttemptView
		require.NoError(t, json.Unmarshal(env.Error, &view))
		assert.Equal(t, domain.StateFailed, view.State)
		assert.Equal(t, "Ratraco", view.Input.Company)
		assert.True(t, view.Control.Enabled)

		s.dispatcher.err = nil
		w, _ = s.do(t, http.MethodPost, "/v1/inquiries/"+view.ID+"/submit", formBody(), nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Should return 404 for an unknown attempt", func(t *testing.T) {
		s := newTestServer(t, false)
		w, env := s.do(t, http.MethodGet, "/v1/inquiries/does-not-exist", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, env.Message, "expired")
	})

	t.Run("Should reject a body over the field limit", func(t *testing.T) {
		s := newTestServer(t, false)
		body := formBody()
		body["user_company"] = string(bytes.Repeat([]byte("x"), 300))

		w, env := s.do(t, http.MethodPost, "/v1/inquiries", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, string(env.Error), "Company")
	})
}

func TestVerificationRoutes(t *testing.T) {
	s := newTestServer(t, true)

	w, env := s.do(t, http.MethodPost, "/v1/inquiries", formBody(), nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	var view domain.AttemptView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.NeedsVerify)
	assert.False(t, view.Control.Enabled)
	assert.Empty(t, s.dispatcher.calls)

	path := "/v1/inquiries/" + view.ID + "/verification"

	w, _ = s.do(t, http.MethodPost, "/v1/inquiries/"+view.ID+"/submit", formBody(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, path, map[string]string{"g-recaptcha-response": "bad-token"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, env = s.do(t, http.MethodPost, path, map[string]string{"g-recaptcha-response": "good-token"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, s.dispatcher.calls, 1)
	assert.Equal(t, "good-token", s.dispatcher.calls[0]["g-recaptcha-response"])

	w, _ = s.do(t, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelVerificationRoute(t *testing.T) {
	s := newTestServer(t, true)

	_, env := s.do(t, http.MethodPost, "/v1/inquiries", formBody(), nil)
	var view domain.AttemptView
	require.NoError(t, json.Unmarshal(env.Data, &view))

	w, env := s.do(t, http.MethodDelete, "/v1/inquiries/"+view.ID+"/verification", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, domain.StateIdle, view.State)
	assert.Equal(t, "Submit Inquiry", view.Control.Label)
}

func TestCheckFieldsRoute(t *testing.T) {
	s := newTestServer(t, false)

	w, env := s.do(t, http.MethodPost, "/v1/inquiries/check", map[string]string{"user_phone": "0912-345-678"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_email":"empty","user_phone":"ok","formatted_phone":"0912 345 678"}`, string(env.Data))

	w, env = s.do(t, http.MethodPost, "/v1/inquiries/check", map[string]string{"user_email": "nope"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "Invalid email format")
}

func TestI18nRoute(t *testing.T) {
	s := newTestServer(t, false)

	w, env := s.do(t, http.MethodGet, "/v1/i18n/vi-VN", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var table struct {
		Lang      string            `json:"lang"`
		Languages []string          `json:"languages"`
		Strings   map[string]string `json:"strings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Equal(t, "vi", table.Lang)
	assert.Equal(t, []string{"en", "vi"}, table.Languages)
	assert.NotEmpty(t, table.Strings["form.submit"])

	_, env = s.do(t, http.MethodGet, "/v1/i18n/fr", nil, nil)
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Equal(t, "en", table.Lang)
	assert.Equal(t, "Submit Inquiry", table.Strings["form.submit"])
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, false)
	_, _ = s.do(t, http.MethodPost, "/v1/inquiries", formBody(), nil)

	w, _ := s.do(t, http.MethodGet, "/v1/admin/inquiries", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/v1/admin/login", map[string]string{"username": "staff", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, "/v1/admin/login", map[string]string{"username": "staff", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var token domain.AdminToken
	require.NoError(t, json.Unmarshal(env.Data, &token))
	auth := map[string]string{"Authorization": "Bearer " + token.AccessToken}

	w, env = s.do(t, http.MethodGet, "/v1/admin/inquiries?page=1&pageSize=10", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var page domain.PaginatedResult[domain.ArchivedInquiry]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ratraco", page.Data[0].Inquiry.Company)

	w, _ = s.do(t, http.MethodGet, "/v1/admin/inquiries/export", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(t, false)

	w, env := s.do(t, http.MethodGet, "/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w, _ = s.do(t, http.MethodOptions, "/v1/inquiries", nil, map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodOptions, "/v1/inquiries", nil, map[string]string{"Origin": "https://ratraco.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ratraco.example", w.Header().Get("Access-Control-Allow-Origin"))
}
