package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/akaydin/fintrack/models"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/repository"
)

// Sayfalama sınırları. per_page üst sınırı olmadan tek istekle tüm
// tabloyu çektirmek mümkün olurdu.
const (
	defaultPerPage = 10
	maxPerPage     = 50
)

// TransactionService, finansal işlem iş mantığını yönetir.
type TransactionService struct {
	repo   repository.TransactionRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewTransactionService, yeni bir TransactionService oluşturur.
func NewTransactionService(repo repository.TransactionRepository, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create, kullanıcı için yeni işlem kaydeder.
func (s *TransactionService) Create(ctx context.Context, userID string, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	cents, err := req.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	tx := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		AmountCents: cents,
		Currency:    req.Currency, // Validate() büyük harfe çevirdi
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Debug("transaction created",
		"user_id", userID, "transaction_id", tx.ID, "currency", tx.Currency)
	return tx, nil
}

// Get, kullanıcının tek bir işlemini döner.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List, kullanıcının işlemlerini sayfalı döner.
// Geçersiz sayfalama değerleri hata değildir, sınırlara çekilir
// (page < 1 → 1, per_page aralık dışı → varsayılan).
func (s *TransactionService) List(ctx context.Context, userID string, page, perPage int) (*models.TransactionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage
	items, err := s.repo.ListByUser(ctx, userID, perPage, offset)
	if err != nil {
		return nil, err
	}

	// Yukarı yuvarlamalı tam sayı bölme: ceil(total / perPage)
	totalPages := (total + perPage - 1) / perPage

	return &models.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// Summary, para birimi bazında toplam tutarları döner.
func (s *TransactionService) Summary(ctx context.Context, userID string) ([]models.CurrencySummary, error) {
	return s.repo.SummaryByCurrency(ctx, userID)
}
