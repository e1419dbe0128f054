// Package repository, veri erişim katmanı (data access layer).
//
// Her entity için önce bir interface tanımlanır, sonra SQLite
// implementasyonu yazılır. Service katmanı sadece interface'i görür —
// testlerde gerçek SQLite (:memory:) veya mock kullanılabilir,
// service kodu değişmez.
package repository

import (
	"context"

	"github.com/akaydin/fintrack/models"
)

// UserRepository, kullanıcı CRUD operasyonlarının sözleşmesi.
type UserRepository interface {
	// Create yeni kullanıcı kaydeder. Email zaten varsa pkg.ErrAlreadyExists döner.
	Create(ctx context.Context, user *models.User) error

	// GetByEmail email ile kullanıcı bulur. Bulunamazsa pkg.ErrNotFound döner.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID id ile kullanıcı bulur. Bulunamazsa pkg.ErrNotFound döner.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdatePassword kullanıcının parola hash'ini günceller.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
