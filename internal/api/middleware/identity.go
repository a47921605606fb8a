package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Identity and authorization live with the external auth proxy in front of
// this service. The proxy authenticates the caller and forwards the opaque
// user ID (and role) in trusted headers; requests reaching this service
// directly without them are rejected.
const (
	// HeaderUserID carries the authenticated caller's opaque user ID.
	HeaderUserID = "X-Teyra-User"
	// HeaderRole carries the caller's role ("admin" unlocks admin routes).
	HeaderRole = "X-Teyra-Role"

	userIDContextKey = "teyra.userID"
)

// RequireIdentity rejects requests without an upstream-supplied user ID and
// stores the ID on the request context for handlers.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(HeaderUserID)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
			}
			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// RequireAdmin gates admin-only routes on the upstream role header.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(HeaderRole) != "admin" {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated user ID stored by RequireIdentity.
func UserID(c echo.Context) string {
	if id, ok := c.Get(userIDContextKey).(string); ok {
		return id
	}
	return ""
}
