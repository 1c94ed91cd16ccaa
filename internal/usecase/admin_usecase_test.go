package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"inquiry-backend/internal/domain"
	"inquiry-backend/internal/repository/memory"
	"inquiry-backend/internal/usecase"
	"inquiry-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminUsecase(t *testing.T, repo domain.InquiryRepository, now func() time.Time) domain.AdminUsecase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return usecase.NewAdminUsecase(repo, usecase.AdminConfig{
		Username:     "staff",
		PasswordHash: string(hash),
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		Now:          now,
	})
}

func appErrorCode(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	uc := newAdminUsecase(t, memory.NewInquiryRepository(10), func() time.Time { return now })

	t.Run("Should issue a token that parses back to the staff user", func(t *testing.T) {
		tok, err := uc.Login(ctx, domain.AdminLoginRequest{Username: "staff", Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, fixedNow.Add(time.Hour), tok.ExpiresAt)

		name, err := uc.ParseToken(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "staff", name)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		_, err := uc.Login(ctx, domain.AdminLoginRequest{Username: "staff", Password: "guess"})
		assert.Equal(t, http.StatusUnauthorized, appErrorCode(err))
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		tok, err := uc.Login(ctx, domain.AdminLoginRequest{Username: "staff", Password: "s3cret"})
		require.NoError(t, err)

		now = now.Add(2 * time.Hour)
		_, err = uc.ParseToken(tok.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, appErrorCode(err))
		assert.Equal(t, "Token expired", err.Error())
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := uc.ParseToken("not.a.token")
		assert.Equal(t, http.StatusUnauthorized, appErrorCode(err))
	})
}

func TestAdminLoginUnconfigured(t *testing.T) {
	uc := usecase.NewAdminUsecase(memory.NewInquiryRepository(10), usecase.AdminConfig{})
	_, err := uc.Login(context.Background(), domain.AdminLoginRequest{Username: "a", Password: "b"})
	assert.Equal(t, http.StatusServiceUnavailable, appErrorCode(err))
}

func TestAdminListInquiries(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInquiryRepository(100)
	for i := 0; i < 25; i++ {
		in := validInquiry()
		in.Company = "Company " + string(rune('A'+i))
		require.NoError(t, repo.Create(ctx, &domain.ArchivedInquiry{
			AttemptID:    "att-" + string(rune('a'+i)),
			Inquiry:      in,
			DispatchedAt: fixedNow.Add(time.Duration(i) * time.Minute),
		}))
	}
	uc := newAdminUsecase(t, repo, nil)

	items, total, err := uc.ListInquiries(ctx, 2, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, items, 10)
	assert.Equal(t, "Company O", items[0].Inquiry.Company)

	items, _, err = uc.ListInquiries(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 20)
}

func TestAdminLoginLockout(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	uc := usecase.NewAdminUsecase(memory.NewInquiryRepository(10), usecase.AdminConfig{
		Username:     "staff",
		PasswordHash: string(hash),
		JWTSecret:    "test-secret",
		Guard:        memory.NewLoginGuard(domain.LoginGuardConfig{MaxAttempts: 3, Window: time.Minute, BlockFor: time.Minute}),
	})

	bad := domain.AdminLoginRequest{Username: "staff", Password: "guess", ClientIP: "10.0.0.7"}
	for i := 0; i < 2; i++ {
		_, err := uc.Login(ctx, bad)
		assert.Equal(t, http.StatusUnauthorized, appErrorCode(err))
	}

	_, err = uc.Login(ctx, bad)
	assert.Equal(t, http.StatusTooManyRequests, appErrorCode(err))

	_, err = uc.Login(ctx, domain.AdminLoginRequest{Username: "staff", Password: "s3cret", ClientIP: "10.0.0.7"})
	assert.Equal(t, http.StatusTooManyRequests, appErrorCode(err), "correct password is still blocked")
}
