package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sparsh1616/MedHistoryApp/auth"
)

const claimsKey = "auth_claims"

// RequireAuth validates the bearer token and stashes the claims on the
// request context. A missing token is 401; a present but invalid token
// is 403.
func (h *Handler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.NoContent(http.StatusUnauthorized)
		}
		claims, err := h.jwt.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.NoContent(http.StatusForbidden)
		}
		c.Set(claimsKey, claims)
		return next(c)
	}
}

// currentUser returns the authenticated claims set by RequireAuth.
func currentUser(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}
