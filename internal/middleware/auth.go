package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tradelog/api/internal/models"
	"tradelog/api/internal/security"
)

const identityKey = "current_user"

// UserLoader resolves a verified token claim to a live account.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Identity is the minimal authenticated principal attached to the request
// context. It deliberately omits the password hash.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  models.UserRole
}

// Auth guards protected routes. Each rejection carries a distinct message
// but the same 401 status; verification failure reasons are logged as
// codes only, with no token material.
func Auth(secret string, users UserLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Not authorized, no token")
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		userID, err := security.VerifyToken(tokenStr, secret)
		if err != nil {
			log.Warn().
				Str("reason", verifyReason(err)).
				Str("path", c.Request.URL.Path).
				Msg("token verification failed")
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			abortUnauthorized(c, "Not authorized, user not found")
			return
		}

		c.Set(identityKey, Identity{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		})
		c.Next()
	}
}

// CurrentUser returns the identity attached by Auth.
func CurrentUser(c *gin.Context) (Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return "expired"
	case errors.Is(err, security.ErrTokenSignature):
		return "signature_mismatch"
	default:
		return "malformed"
	}
}
