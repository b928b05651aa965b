package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelog/api/internal/models"
	"tradelog/api/internal/repository"
	"tradelog/api/internal/security"
)

const testSecret = "middleware-test-secret"

func newProtectedRouter(users UserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(testSecret, users, zerolog.Nop()), func(c *gin.Context) {
		identity, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": identity.ID, "email": identity.Email})
	})
	return router
}

func seedUser(t *testing.T, store *repository.MemoryUserStore) models.User {
	t.Helper()
	user := models.User{
		ID:    "user-1",
		Email: "jane@example.com",
		Name:  "Jane",
		Role:  models.UserRoleUser,
	}
	require.NoError(t, store.Create(context.Background(), user))
	return user
}

func get(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestAuth_NoToken(t *testing.T) {
	router := newProtectedRouter(repository.NewMemoryUserStore())

	for _, header := range []string{"", "Basic abc123", "Bearer"} {
		rec := get(router, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, no token", message(t, rec))
	}
}

func TestAuth_TokenFailed(t *testing.T) {
	store := repository.NewMemoryUserStore()
	seedUser(t, store)
	router := newProtectedRouter(store)

	expired, err := security.IssueToken(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)
	forged, err := security.IssueToken("other-secret", "user-1", time.Hour)
	require.NoError(t, err)

	// Garbled, expired, and forged tokens are externally identical.
	for _, token := range []string{"garbage", expired, forged} {
		rec := get(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, token failed", message(t, rec))
	}
}

func TestAuth_UserNotFound(t *testing.T) {
	store := repository.NewMemoryUserStore()
	user := seedUser(t, store)
	router := newProtectedRouter(store)

	token, err := security.IssueToken(testSecret, user.ID, time.Hour)
	require.NoError(t, err)

	// Token is valid but the account has since been deleted.
	store.Delete(context.Background(), user.ID)

	rec := get(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, user not found", message(t, rec))
}

func TestAuth_AttachesIdentity(t *testing.T) {
	store := repository.NewMemoryUserStore()
	user := seedUser(t, store)
	router := newProtectedRouter(store)

	token, err := security.IssueToken(testSecret, user.ID, time.Hour)
	require.NoError(t, err)

	rec := get(router, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body["id"])
	assert.Equal(t, user.Email, body["email"])
}
