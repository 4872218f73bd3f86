package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/fritterhq/fritter/backend/internal/models"
)

// getUserIDFromContext returns the acting user's ID from the JWT claims
// placed on the context by the auth middleware, or 0 when the request is
// unauthenticated. The acting user is always explicit: handlers thread
// this ID into every store call, never ambient session state.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}
