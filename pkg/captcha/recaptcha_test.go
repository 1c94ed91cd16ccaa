package captcha_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/captcha"

	"github.com/stretchr/testify/assert"
)

func TestRecaptchaVerifier(t *testing.T) {
	t.Run("Should accept a successful token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "secret", r.PostForm.Get("secret"))
			assert.Equal(t, "token", r.PostForm.Get("response"))
			assert.Equal(t, "203.0.113.7", r.PostForm.Get("remoteip"))
			_, _ = w.Write([]byte(`{"success":true,"hostname":"ratraco.vn"}`))
		}))
		defer srv.Close()

		v := captcha.NewRecaptchaVerifier("secret", srv.URL, nil)
		assert.NoError(t, v.Verify(context.Background(), "token", "203.0.113.7"))
	})

	t.Run("Should reject a failed token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["timeout-or-duplicate"]}`))
		}))
		defer srv.Close()

		v := captcha.NewRecaptchaVerifier("secret", srv.URL, nil)
		err := v.Verify(context.Background(), "token", "")
		assert.True(t, errors.Is(err, domain.ErrVerificationRejected))
		assert.Contains(t, err.Error(), "timeout-or-duplicate")
	})

	t.Run("Should reject an empty token without calling out", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer srv.Close()

		v := captcha.NewRecaptchaVerifier("secret", srv.URL, nil)
		err := v.Verify(context.Background(), " ", "")
		assert.True(t, errors.Is(err, domain.ErrVerificationRejected))
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	})

	t.Run("Should report unavailability after retries", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		v := captcha.NewRecaptchaVerifier("secret", srv.URL, nil)
		err := v.Verify(context.Background(), "token", "")
		assert.True(t, errors.Is(err, domain.ErrVerificationUnavailable))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})
}

func TestMaxVerifyDuration(t *testing.T) {
	// three 5s requests with up to 1s between them
	assert.Equal(t, 17*time.Second, captcha.MaxVerifyDuration)
}
