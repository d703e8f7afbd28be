package handlers

import (
	"fmt"
	"net/url"

	"github.com/fakeverse/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext extracts the authenticated user's ID from the JWT
// claims stored by the auth middleware. Returns 0 if no claims are present.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// avatarURL builds the external avatar image URL for a username. Avatars
// are not stored locally; the image host derives them from the name.
func avatarURL(username string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s", url.QueryEscape(username))
}
