package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Email providers selectable with EMAIL_PROVIDER
const (
	ProviderEmailJS = "emailjs"
	ProviderSMTP    = "smtp"
)

type Config struct {
	Port            string
	GinMode         string
	LogLevel        string
	DBUrl           string
	DefaultLanguage string
	AllowedOrigins  []string
	// Email dispatch
	EmailProvider     string
	EmailJSServiceID  string
	EmailJSTemplateID string
	EmailJSPublicKey  string
	EmailJSPrivateKey string // optional access token for strict-mode EmailJS accounts
	EmailJSEndpoint   string
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SMTPFromEmail     string
	ContactEmailTo    string
	DispatchTimeout   time.Duration
	// Bot verification (reCAPTCHA v2)
	RecaptchaEnabled     bool
	RecaptchaSecret      string
	RecaptchaEndpoint    string
	ReverifyAfterFailure bool
	// Submission state
	AttemptTTL time.Duration
	MarkerTTL  time.Duration
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitInquiryThreshold int
	RateLimitGlobalThreshold  int
	// Staff access to the inquiry archive
	AdminUsername     string
	AdminPasswordHash string
	AdminJWTSecret    string
	AdminTokenTTL     time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production sets real environment variables
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DBUrl:           getEnv("DATABASE_URL", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5500", "http://127.0.0.1:5500"}),
		// Email dispatch
		EmailProvider:     strings.ToLower(getEnv("EMAIL_PROVIDER", ProviderEmailJS)),
		EmailJSServiceID:  getEnv("EMAILJS_SERVICE_ID", ""),
		EmailJSTemplateID: getEnv("EMAILJS_TEMPLATE_ID", ""),
		EmailJSPublicKey:  getEnv("EMAILJS_PUBLIC_KEY", ""),
		EmailJSPrivateKey: getEnv("EMAILJS_PRIVATE_KEY", ""),
		EmailJSEndpoint:   getEnv("EMAILJS_ENDPOINT", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:     getEnv("SMTP_FROM_EMAIL", ""),
		ContactEmailTo:    getEnv("CONTACT_EMAIL_TO", ""),
		DispatchTimeout:   getEnvDuration("DISPATCH_TIMEOUT", 20*time.Second),
		// Bot verification
		RecaptchaEnabled:     getEnvBool("RECAPTCHA_ENABLED", false),
		RecaptchaSecret:      getEnv("RECAPTCHA_SECRET", ""),
		RecaptchaEndpoint:    getEnv("RECAPTCHA_ENDPOINT", ""),
		ReverifyAfterFailure: getEnvBool("REVERIFY_AFTER_FAILURE", true),
		// Submission state
		AttemptTTL: getEnvDuration("ATTEMPT_TTL", 30*time.Minute),
		MarkerTTL:  getEnvDuration("MARKER_TTL", time.Minute),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate limiting
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitInquiryThreshold: getEnvInt("RATE_LIMIT_INQUIRY_THRESHOLD", 10),
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Staff
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminJWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
		AdminTokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", 8*time.Hour),
	}

	if cfg.RecaptchaEnabled && cfg.RecaptchaSecret == "" {
		log.Println("WARNING: RECAPTCHA_ENABLED is set but RECAPTCHA_SECRET is missing. Verification will be skipped.")
		cfg.RecaptchaEnabled = false
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Attempts, markers and rate limits will be kept in memory.")
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Dispatched inquiries will be archived in memory only (newest 500, lost on restart).")
	}

	return cfg, nil
}

// AttemptLockTTL is how long one request may hold an attempt: a verification call
// (verifyBudget) followed by a dispatch, plus slack for the store round trips.
// Never shorter than a minute.
func (c *Config) AttemptLockTTL(verifyBudget time.Duration) time.Duration {
	dispatch := c.DispatchTimeout
	if dispatch <= 0 {
		// unbounded dispatch; hold the lock as long as the attempt lives
		return c.AttemptTTL
	}
	ttl := dispatch + verifyBudget + 10*time.Second
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

// VerificationRequired reports whether the bot check gates dispatch
func (c *Config) VerificationRequired() bool {
	return c.RecaptchaEnabled && c.RecaptchaSecret != ""
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks and trailing slashes
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimRight(strings.TrimSpace(item), "/")
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
