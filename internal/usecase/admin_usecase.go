package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/apperror"
	"inquiry-backend/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenIssuer = "inquiry-backend"

var errLoginBlocked = apperror.New(http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.", nil)

// AdminConfig holds the single staff account
type AdminConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
	Guard        domain.LoginGuard // nil disables the lockout
	Now          func() time.Time
}

type adminUsecase struct {
	repo domain.InquiryRepository
	cfg  AdminConfig
}

func NewAdminUsecase(repo domain.InquiryRepository, cfg AdminConfig) domain.AdminUsecase {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &adminUsecase{repo: repo, cfg: cfg}
}

func (u *adminUsecase) enabled() bool {
	return u.cfg.Username != "" && u.cfg.PasswordHash != "" && u.cfg.JWTSecret != ""
}

// Login checks the staff credentials and issues a signed token
func (u *adminUsecase) Login(ctx context.Context, req domain.AdminLoginRequest) (*domain.AdminToken, error) {
	if !u.enabled() {
		return nil, apperror.Unavailable("Admin access is not configured", nil)
	}

	if u.cfg.Guard != nil {
		blocked, err := u.cfg.Guard.IsBlocked(ctx, req.Username, req.ClientIP)
		if err != nil {
			// fail open; the login rate limit still applies
			logger.Log.Warn("Login guard unavailable", "error", err)
		}
		if blocked {
			return nil, errLoginBlocked
		}
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(u.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(u.cfg.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		if u.cfg.Guard != nil {
			blocked, attempts, err := u.cfg.Guard.RecordFailure(ctx, req.Username, req.ClientIP)
			if err != nil {
				logger.Log.Warn("Failed to record login failure", "error", err)
			}
			logger.Log.Warn("Admin login failed", "ip", req.ClientIP, "attempts", attempts, "blocked", blocked)
			if blocked {
				return nil, errLoginBlocked
			}
		}
		return nil, apperror.Unauthorized("Invalid username or password")
	}

	if u.cfg.Guard != nil {
		if err := u.cfg.Guard.Clear(ctx, req.Username, req.ClientIP); err != nil {
			logger.Log.Warn("Failed to clear login failures", "error", err)
		}
	}

	now := u.cfg.Now()
	expiresAt := now.Add(u.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    adminTokenIssuer,
		Subject:   u.cfg.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sign admin token: %w", err))
	}

	return &domain.AdminToken{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken validates a staff token and returns its subject
func (u *adminUsecase) ParseToken(tokenString string) (string, error) {
	if !u.enabled() {
		return "", apperror.Unavailable("Admin access is not configured", nil)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(u.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(adminTokenIssuer),
		jwt.WithTimeFunc(u.cfg.Now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Unauthorized("Token expired")
		}
		return "", apperror.Unauthorized("Invalid token")
	}
	if claims.Subject != u.cfg.Username {
		return "", apperror.Unauthorized("Invalid token")
	}
	return claims.Subject, nil
}

// ListInquiries returns a page of archived inquiries, newest first
func (u *adminUsecase) ListInquiries(ctx context.Context, page, pageSize int) ([]domain.ArchivedInquiry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := u.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Internal(errors.New("Failed to fetch inquiries: " + err.Error()))
	}
	return items, total, nil
}
