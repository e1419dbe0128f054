// Package handlers, HTTP endpoint'lerini implement eder.
//
// Handler'lar JSON decode/encode ve status kodu seçiminden sorumludur;
// iş mantığı service katmanındadır.
package handlers

import (
	"context"
	"net/http"

	"github.com/akaydin/fintrack/models"
)

// contextKey, context.Value çakışmalarını önleyen private tip.
// String key kullansaydık başka bir paket aynı string ile yazabilirdi;
// private tip bunu derleme zamanında imkansız kılar.
type contextKey string

// UserContextKey, doğrulanmış kullanıcının context içindeki anahtarı.
// Middleware yazar, handler'lar CurrentUser ile okur.
const UserContextKey contextKey = "user"

// WithUser, request context'ine doğrulanmış kullanıcıyı ekler.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// CurrentUser, context'teki doğrulanmış kullanıcıyı döner.
// Kullanıcı yoksa (anonim istek) ikinci dönüş değeri false olur.
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}
