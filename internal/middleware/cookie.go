// File: internal/middleware/cookie.go
package middleware

import (
	"net/http"
	"time"

	"estate_backend/internal/config"

	"github.com/gin-gonic/gin"
)

// SetAccessCookie stores the access token in the HTTP-only session cookie.
func SetAccessCookie(c *gin.Context, cfg *config.Config, token string, ttl time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		Secure:   cfg.CookieSecure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.CookieSameSite),
	})
}

// ClearAccessCookie expires the session cookie on the client.
func ClearAccessCookie(c *gin.Context, cfg *config.Config) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   -1,
		Secure:   cfg.CookieSecure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.CookieSameSite),
	})
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
