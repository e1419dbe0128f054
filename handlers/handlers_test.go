package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaydin/fintrack/database"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/pkg/ratelimit"
	"github.com/akaydin/fintrack/pkg/token"
	"github.com/akaydin/fintrack/repository"
	"github.com/akaydin/fintrack/services"
)

// testAPI, handler testleri için uçtan uca kurulum: gerçek service ve
// repository katmanı, in-memory SQLite, httptest üzerinden istek.
type testAPI struct {
	auth    *AuthHandler
	limiter *ratelimit.LoginRateLimiter
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.New(":memory:", database.MigrationsFS())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := token.NewAuthority("handler-test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db.Conn)
	resetRepo := repository.NewResetTokenRepository(db.Conn)
	authService := services.NewAuthService(userRepo, resetRepo, tokens, nil, db.Conn, logger)

	limiter := ratelimit.NewLoginRateLimiter(3, time.Minute)
	t.Cleanup(limiter.Close)

	return &testAPI{
		auth:    NewAuthHandler(authService, limiter, logger),
		limiter: limiter,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) pkg.APIResponse {
	t.Helper()
	var resp pkg.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	api := newTestAPI(t)

	t.Run("created", func(t *testing.T) {
		rec := postJSON(t, api.auth.Register, "/api/auth/register", map[string]string{
			"email": "h@example.com", "password": "Sifre123!",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
	})

	t.Run("duplicate gets 409", func(t *testing.T) {
		rec := postJSON(t, api.auth.Register, "/api/auth/register", map[string]string{
			"email": "h@example.com", "password": "Sifre123!",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password gets 400", func(t *testing.T) {
		rec := postJSON(t, api.auth.Register, "/api/auth/register", map[string]string{
			"email": "h2@example.com", "password": "kisa",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body gets 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{geçersiz"))
		rec := httptest.NewRecorder()
		api.auth.Register(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	api := newTestAPI(t)

	rec := postJSON(t, api.auth.Register, "/api/auth/register", map[string]string{
		"email": "login@example.com", "password": "Sifre123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("success returns bearer token", func(t *testing.T) {
		rec := postJSON(t, api.auth.Login, "/api/auth/login", map[string]string{
			"email": "login@example.com", "password": "Sifre123!",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "bearer", data["token_type"])
		assert.NotEmpty(t, data["access_token"])
	})

	t.Run("wrong credentials get 401", func(t *testing.T) {
		rec := postJSON(t, api.auth.Login, "/api/auth/login", map[string]string{
			"email": "login@example.com", "password": "YanlisSifre1!",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Login_RateLimited(t *testing.T) {
	api := newTestAPI(t)

	body := map[string]string{"email": "ghost@example.com", "password": "YanlisSifre1!"}

	// Limit 3: ilk 3 deneme 401, dördüncüsü 429 almalı.
	for i := 0; i < 3; i++ {
		rec := postJSON(t, api.auth.Login, "/api/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code, fmt.Sprintf("attempt %d", i+1))
	}

	rec := postJSON(t, api.auth.Login, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAuthHandler_ForgotPassword_AlwaysSameResponse(t *testing.T) {
	api := newTestAPI(t)

	rec := postJSON(t, api.auth.Register, "/api/auth/register", map[string]string{
		"email": "known@example.com", "password": "Sifre123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	known := postJSON(t, api.auth.ForgotPassword, "/api/auth/forgot-password",
		map[string]string{"email": "known@example.com"})
	unknown := postJSON(t, api.auth.ForgotPassword, "/api/auth/forgot-password",
		map[string]string{"email": "unknown@example.com"})

	// Kayıtlı ve kayıtsız email birebir aynı cevabı almalı
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}
