package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akaydin/fintrack/models"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/pkg/ratelimit"
	"github.com/akaydin/fintrack/services"
)

// AuthHandler, kimlik doğrulama endpoint'lerini yönetir.
type AuthHandler struct {
	service *services.AuthService
	limiter *ratelimit.LoginRateLimiter
	logger  *slog.Logger
}

// NewAuthHandler, yeni bir AuthHandler oluşturur.
func NewAuthHandler(service *services.AuthService, limiter *ratelimit.LoginRateLimiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, limiter: limiter, logger: logger}
}

// Register, POST /api/auth/register endpoint'ini işler.
// Başarıda 201 ve kullanıcı döner, email çakışmasında 409.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, user)
}

// Login, POST /api/auth/login endpoint'ini işler.
// IP başına rate limit uygulanır; başarılı girişte sayaç sıfırlanır.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if !h.limiter.Allow(ip) {
		retryAfter := h.limiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.logger.Warn("login rate limit exceeded", "ip", ip)
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			ratelimit.FormatRetryMessage(retryAfter))
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokenResp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	h.limiter.Reset(ip)
	pkg.JSON(w, http.StatusOK, tokenResp)
}

// Me, GET /api/users/me endpoint'ini işler.
// RequireUser middleware'inden geçtiği için kullanıcı her zaman vardır.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}
	pkg.JSON(w, http.StatusOK, user)
}

// ForgotPassword, POST /api/auth/forgot-password endpoint'ini işler.
// Email kayıtlı olsa da olmasa da aynı cevap döner.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// ResetPassword, POST /api/auth/reset-password endpoint'ini işler.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "password has been reset",
	})
}
