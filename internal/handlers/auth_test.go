package handlers

import (
	"bytes"
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
	"golang.org/x/crypto/bcrypt"

	"tradelog/api/internal/config"
	"tradelog/api/internal/repository"
	"tradelog/api/internal/security"
	"tradelog/api/internal/service"
)

const testSecret = "handler-test-secret"

type testEnv struct {
	router *gin.Engine
	users  *repository.MemoryUserStore
	trades *repository.MemoryTradeStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:  testSecret,
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
	}
	logger := zerolog.Nop()
	users := repository.NewMemoryUserStore()
	trades := repository.NewMemoryTradeStore()

	h := HandlerSet{
		log:       logger,
		cfg:       cfg,
		auth:      service.NewAuthService(users, cfg, logger),
		trades:    service.NewTradeService(trades, nil, logger),
		dashboard: service.NewDashboardService(trades, nil, logger),
		importer:  service.NewImportService(trades, nil, nil, logger),
		users:     users,
	}

	router := gin.New()
	h.Routes(router.Group("/api"))

	return testEnv{router: router, users: users, trades: trades}
}

func (e testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (e testEnv) register(t *testing.T, email, password, name string) (map[string]any, string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": email, "password": password, "name": name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]any)
	return data["user"].(map[string]any), data["token"].(string)
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "jane@example.com", "password": "Secret123", "name": "Jane",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])
	assert.Equal(t, "Jane", user["name"])
	assert.Equal(t, "user", user["role"])
	assert.NotEmpty(t, user["id"])
	assert.NotEmpty(t, user["createdAt"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "password")

	// The issued token resolves to the created user.
	userID, err := security.VerifyToken(data["token"].(string), testSecret)
	require.NoError(t, err)
	assert.Equal(t, user["id"], userID)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload gin.H
		field   string
	}{
		{"short password", gin.H{"email": "jane@example.com", "password": "123", "name": "Jane"}, "password"},
		{"bad email", gin.H{"email": "not-an-email", "password": "Secret123", "name": "Jane"}, "email"},
		{"missing name", gin.H{"email": "jane@example.com", "password": "Secret123"}, "name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/register", "", tc.payload)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			body := decode(t, rec)
			errs := body["errors"].([]any)
			require.NotEmpty(t, errs)
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.(map[string]any)["field"].(string))
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@example.com", "Secret123", "Jane")

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "Jane@Example.com", "password": "Other456", "name": "Imposter",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decode(t, rec)["message"])
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	user, registerToken := env.register(t, "e2e@ex.com", "Secret123", "E2E")
	assert.Equal(t, "e2e@ex.com", user["email"])

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "e2e@ex.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].(map[string]any)
	loginToken := data["token"].(string)
	assert.NotEqual(t, registerToken, loginToken)

	fromRegister, err := security.VerifyToken(registerToken, testSecret)
	require.NoError(t, err)
	fromLogin, err := security.VerifyToken(loginToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, fromRegister, fromLogin)
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@example.com", "Secret123", "Jane")

	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "jane@example.com", "password": "WrongPass",
	})
	unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "Secret123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLogin_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "jane@example.com",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errs := decode(t, rec)["errors"].([]any)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	assert.Equal(t, "password", first["field"])
	assert.Equal(t, "Password is required", first["message"])
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.register(t, "jane@example.com", "Secret123", "Jane")

	rec := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, user["id"], data["id"])
	assert.Equal(t, "jane@example.com", data["email"])
	assert.NotContains(t, data, "passwordHash")
}

func TestProtectedRoutes_AuthFailures(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.register(t, "jane@example.com", "Secret123", "Jane")

	noToken := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, noToken.Code)
	assert.Equal(t, "Not authorized, no token", decode(t, noToken)["message"])

	badToken := env.do(t, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, badToken.Code)
	assert.Equal(t, "Not authorized, token failed", decode(t, badToken)["message"])

	// Valid token for an account deleted after issuance.
	env.users.Delete(context.Background(), user["id"].(string))
	vanished := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, vanished.Code)
	assert.Equal(t, "Not authorized, user not found", decode(t, vanished)["message"])
}
