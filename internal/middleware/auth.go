package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/models"
)

// currentUserKey is the gin context key holding the authenticated *models.User.
const currentUserKey = "currentUser"

// TokenAuthenticator resolves a bearer token to the user it was issued for.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// ErrorResponder writes an error response for err and aborts the request.
type ErrorResponder func(c *gin.Context, err error)

// CurrentUser returns the authenticated user, or nil outside RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// GetUserID returns the authenticated user's ID, or "" when there is none.
func GetUserID(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth validates the bearer token, loads the user and stores it in the context.
func RequireAuth(authenticator TokenAuthenticator, fail ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			fail(c, err)
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			fail(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}
