package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TxQuerier, hem *sql.DB hem *sql.Tx tarafından sağlanan ortak sorgu
// arayüzü. Repository metodları bu arayüzü alırsa, aynı kod hem normal
// bağlantıyla hem transaction içinde çalışır — Go'da "accept interfaces"
// prensibinin klasik bir uygulaması.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Derleme zamanı kontrolü: her iki tip de arayüzü sağlıyor mu?
var (
	_ TxQuerier = (*sql.DB)(nil)
	_ TxQuerier = (*sql.Tx)(nil)
)

// WithTx, verilen fonksiyonu bir transaction içinde çalıştırır.
// fn hata dönerse rollback, başarılıysa commit yapılır. Panic durumunda
// da rollback garanti edilir (defer + recover).
//
// Kullanım:
//
//	err := database.WithTx(ctx, db.Conn, func(tx database.TxQuerier) error {
//	    // tx üzerinden repository çağrıları...
//	    return nil
//	})
func WithTx(ctx context.Context, db *sql.DB, fn func(tx TxQuerier) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // rollback sonrası panic'i yeniden fırlat
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
