package domain

import (
	"context"
	"time"
)

// ArchivedInquiry is a successfully dispatched inquiry kept for staff review
type ArchivedInquiry struct {
	ID           int64     `json:"id"`
	AttemptID    string    `json:"attempt_id"`
	Lang         string    `json:"lang"`
	Inquiry      Inquiry   `json:"inquiry"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// InquiryRepository stores dispatched inquiries
type InquiryRepository interface {
	Create(ctx context.Context, inq *ArchivedInquiry) error
	List(ctx context.Context, limit, offset int) ([]ArchivedInquiry, int64, error)
}

// AdminLoginRequest is the body of the staff login endpoint
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	ClientIP string `json:"-"`
}

// AdminToken is returned after a successful staff login
type AdminToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginGuardConfig controls the failed-login lockout
type LoginGuardConfig struct {
	MaxAttempts int           // failures before a block (default: 5)
	Window      time.Duration // how long failures are counted (default: 15min)
	BlockFor    time.Duration // block length (default: 15min)
}

// DefaultLoginGuardConfig returns the lockout used when none is configured
func DefaultLoginGuardConfig() LoginGuardConfig {
	return LoginGuardConfig{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		BlockFor:    15 * time.Minute,
	}
}

// LoginGuard tracks failed staff logins by username and client IP
type LoginGuard interface {
	IsBlocked(ctx context.Context, username, ip string) (bool, error)
	// RecordFailure counts one failure and reports whether a block was created
	RecordFailure(ctx context.Context, username, ip string) (blocked bool, attempts int, err error)
	Clear(ctx context.Context, username, ip string) error
}

// AdminUsecase covers the staff-only inquiry archive
type AdminUsecase interface {
	Login(ctx context.Context, req AdminLoginRequest) (*AdminToken, error)
	ParseToken(token string) (username string, err error)
	ListInquiries(ctx context.Context, page, pageSize int) ([]ArchivedInquiry, int64, error)
}

// PaginatedResult wraps one page of a listing
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}
