package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireTriggerSecret returns a middleware that guards operator endpoints
// with a shared secret carried in the X-Trigger-Secret header. An empty
// configured secret is an operator misconfiguration, not a caller error.
func RequireTriggerSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusInternalServerError, "Trigger secret not configured")
			}

			provided := c.Request().Header.Get("X-Trigger-Secret")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid trigger secret")
			}

			return next(c)
		}
	}
}
