package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akaydin/fintrack/database"
	"github.com/akaydin/fintrack/models"
	"github.com/akaydin/fintrack/pkg"
)

type sqliteTransactionRepository struct {
	db database.TxQuerier
}

// NewTransactionRepository, yeni bir SQLite transaction repository oluşturur.
func NewTransactionRepository(db database.TxQuerier) TransactionRepository {
	return &sqliteTransactionRepository{db: db}
}

func (r *sqliteTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.AmountCents, tx.Currency, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *sqliteTransactionRepository) GetByID(ctx context.Context, userID, id string) (*models.Transaction, error) {
	query := `
		SELECT id, user_id, amount, currency, created_at
		FROM transactions
		WHERE id = ? AND user_id = ?
	`
	tx := &models.Transaction{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&tx.ID, &tx.UserID, &tx.AmountCents, &tx.Currency, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction not found", pkg.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *sqliteTransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error) {
	// created_at eşitliğinde id ile ikincil sıralama — sayfalar arası
	// deterministik sıra garantisi.
	query := `
		SELECT id, user_id, amount, currency, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	// Boş sonuçta nil değil boş slice döneriz — JSON'da null yerine [] olur.
	transactions := []*models.Transaction{}
	for rows.Next() {
		tx := &models.Transaction{}
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.AmountCents, &tx.Currency, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

func (r *sqliteTransactionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *sqliteTransactionRepository) SummaryByCurrency(ctx context.Context, userID string) ([]models.CurrencySummary, error) {
	// SUM(amount) cent cinsinden — float'a çevirme iş kuralıdır,
	// service katmanında yapılır.
	query := `
		SELECT currency, SUM(amount)
		FROM transactions
		WHERE user_id = ?
		GROUP BY currency
		ORDER BY currency ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	summaries := []models.CurrencySummary{}
	for rows.Next() {
		var currency string
		var totalCents int64
		if err := rows.Scan(&currency, &totalCents); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, models.CurrencySummary{
			Currency: currency,
			Total:    float64(totalCents) / 100,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary: %w", err)
	}
	return summaries, nil
}
