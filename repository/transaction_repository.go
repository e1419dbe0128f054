package repository

import (
	"context"

	"github.com/akaydin/fintrack/models"
)

// TransactionRepository, finansal işlem operasyonlarının sözleşmesi.
// Tüm okuma metodları user_id ile filtreler — bir kullanıcı asla başka
// bir kullanıcının işlemlerini göremez.
type TransactionRepository interface {
	// Create yeni işlem kaydeder.
	Create(ctx context.Context, tx *models.Transaction) error

	// GetByID tek işlem döner. İşlem yoksa veya başka kullanıcıya aitse
	// pkg.ErrNotFound döner (sahiplik bilgisi sızdırılmaz).
	GetByID(ctx context.Context, userID, id string) (*models.Transaction, error)

	// ListByUser kullanıcının işlemlerini yeniden eskiye sıralı döner.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error)

	// CountByUser kullanıcının toplam işlem sayısını döner (sayfalama için).
	CountByUser(ctx context.Context, userID string) (int, error)

	// SummaryByCurrency para birimi bazında toplamları alfabetik sıralı döner.
	SummaryByCurrency(ctx context.Context, userID string) ([]models.CurrencySummary, error)
}
