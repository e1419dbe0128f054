package repository

import (
	"context"

	"github.com/akaydin/fintrack/models"
)

// ResetTokenRepository, parola sıfırlama token operasyonlarının sözleşmesi.
type ResetTokenRepository interface {
	// Create yeni sıfırlama token kaydı oluşturur.
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// GetByTokenHash hash ile token bulur. Bulunamazsa pkg.ErrNotFound döner.
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)

	// GetLatestByUserID kullanıcının en yeni token'ını döner (cooldown kontrolü).
	// Hiç token yoksa pkg.ErrNotFound döner.
	GetLatestByUserID(ctx context.Context, userID string) (*models.PasswordResetToken, error)

	// DeleteByUserID kullanıcının tüm token'larını siler (başarılı sıfırlama sonrası).
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired süresi geçmiş token'ları temizler, silinen sayıyı döner.
	DeleteExpired(ctx context.Context) (int64, error)
}
