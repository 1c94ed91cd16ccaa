package middleware

import (
	"net/http"
	"time"

	"inquiry-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientCookie   = "inquiry_client"
	LanguageCookie = "preferred_language"

	cookieMaxAge = int(365 * 24 * time.Hour / time.Second)
)

// LanguageResolver is the part of the locale store the middleware needs
type LanguageResolver interface {
	Normalize(lang string) string
	Match(acceptLanguage string) string
}

// ClientIdentity resolves the visitor's client id, issuing one when absent.
// The id scopes the "just submitted" marker.
func ClientIdentity(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ClientIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = ""
		}
		if id == "" {
			if cookie, err := c.Cookie(ClientCookie); err == nil {
				if _, err := uuid.Parse(cookie); err == nil {
					id = cookie
				}
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, id, cookieMaxAge, "/", "", secureCookies, true)
		}

		c.Set(string(domain.KeyClientID), id)
		c.Header(ClientIDHeader, id)
		c.Next()
	}
}

// Language picks the display language: ?lang=, then the preference cookie, then Accept-Language.
// An explicit ?lang= is remembered in the cookie.
func Language(resolver LanguageResolver, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if q := c.Query("lang"); q != "" {
			lang = resolver.Normalize(q)
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(LanguageCookie, lang, cookieMaxAge, "/", "", secureCookies, false)
		} else if cookie, err := c.Cookie(LanguageCookie); err == nil && cookie != "" {
			lang = resolver.Normalize(cookie)
		} else {
			lang = resolver.Match(c.GetHeader("Accept-Language"))
		}

		c.Set(string(domain.KeyLanguage), lang)
		c.Next()
	}
}
