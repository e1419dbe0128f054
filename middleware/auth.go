// Package middleware, HTTP istek zincirine giren ara katmanları içerir.
//
// Go'da middleware, http.Handler alıp http.Handler dönen bir sarmalayıcıdır
// (decorator pattern). Zincir dıştan içe çalışır:
//
//	cors → UserInjection → RequestLogger → mux → handler
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/akaydin/fintrack/handlers"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/pkg/token"
	"github.com/akaydin/fintrack/repository"
)

// UserInjection, Authorization header'ındaki bearer token'ı çözer ve
// kullanıcıyı request context'ine koyar.
//
// Bu katman "yumuşaktır": token yoksa, bozuksa veya süresi geçmişse
// istek reddedilmez, sadece anonim devam eder. Reddetme kararı
// RequireUser'a aittir. Böylece public endpoint'ler de zincirin
// içinden geçer ve audit log'da kimlik bilgisi görünür.
type UserInjection struct {
	tokens      *token.Authority
	userRepo    repository.UserRepository
	publicPaths []string // bu prefix'lerde token çözümü hiç denenmez
	logger      *slog.Logger
}

// NewUserInjection, yeni bir UserInjection middleware oluşturur.
// publicPaths: kimlik gerektirmeyen path prefix'leri (login, register vb.) —
// bu path'lerde DB lookup'ı atlanır, her istek zaten anonim işlenir.
func NewUserInjection(tokens *token.Authority, userRepo repository.UserRepository, publicPaths []string, logger *slog.Logger) *UserInjection {
	return &UserInjection{tokens: tokens, userRepo: userRepo, publicPaths: publicPaths, logger: logger}
}

// Handler, middleware zincirine eklenir.
func (m *UserInjection) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := m.tokens.Verify(tokenString)
		if err != nil {
			// Hata sınıfı log'a yazılır ama istemciye sızdırılmaz;
			// istek anonim devam eder.
			m.logger.Debug("token verification failed", "reason", rejectionClass(err))
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), subject)
		if err != nil {
			// Token geçerli ama kullanıcı silinmiş olabilir.
			m.logger.Debug("token subject not found", "reason", "unknown_user")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
	})
}

// isPublic, path'in kimlik çözümü gerektirmeyen bir prefix'le başlayıp
// başlamadığına bakar.
func (m *UserInjection) isPublic(path string) bool {
	for _, p := range m.publicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RequireUser, doğrulanmış kullanıcı olmayan istekleri 401 ile keser.
// UserInjection'dan SONRA, korumalı handler'lardan ÖNCE durmalıdır.
type RequireUser struct{}

// NewRequireUser, yeni bir RequireUser middleware oluşturur.
func NewRequireUser() *RequireUser {
	return &RequireUser{}
}

// Require, korumalı bir handler'ı sarar.
func (m *RequireUser) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := handlers.CurrentUser(r); !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken, "Authorization: Bearer <token>" header'ından token'ı çıkarır.
// Şema adı case-insensitive karşılaştırılır (RFC 7235).
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// rejectionClass, token hatasını log için kısa bir etikete çevirir.
func rejectionClass(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
