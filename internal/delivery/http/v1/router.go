package v1

import (
	"time"

	"inquiry-backend/config"
	"inquiry-backend/internal/delivery/http/middleware"
	"inquiry-backend/internal/domain"
	"inquiry-backend/internal/usecase"
	"inquiry-backend/pkg/i18n"
	"inquiry-backend/pkg/metrics"
	"inquiry-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	InquiryUC   domain.InquiryUsecase
	AdminUC     domain.AdminUsecase
	HealthUC    usecase.HealthUsecase
	Locale      *i18n.Store
	RateLimiter *middleware.RateLimiter
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	r := gin.New()
	secure := deps.Config.IsProduction()
	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(metrics.HTTPMetrics())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(deps.RateLimiter.Middleware(middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.Language(deps.Locale, secure))

	NewHealthHandler(v1, deps.HealthUC)
	NewI18nHandler(v1, deps.Locale)

	// Public routes
	public := v1.Group("")
	public.Use(middleware.ClientIdentity(secure))
	submitLimit := deps.RateLimiter.Middleware(middleware.InquiryRateLimitConfig(deps.Config.RateLimitInquiryThreshold, window))
	NewInquiryHandler(public, deps.InquiryUC, deps.Locale, submitLimit)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AdminAuth(deps.AdminUC))
	NewAdminHandler(v1, protected, deps.AdminUC, deps.Locale, deps.RateLimiter.Middleware(middleware.LoginRateLimitConfig()))

	return r
}
