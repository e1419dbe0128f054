// Package models — Transaction ve ilgili request/response struct'ları.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"
)

// currencyRegex, 3 harfli büyük harf para birimi kodu (ISO 4217 formatı).
var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// Transaction, tek bir finansal işlemi temsil eder.
//
// AmountCents: tutar CENT cinsinden integer saklanır.
// Neden float değil? 0.1 + 0.2 != 0.3 — IEEE 754 float'ları para için
// güvenilmezdir. Integer cent ile toplama/karşılaştırma her zaman kesindir.
// API'ye çıkarken units'e (12.34 gibi) çevrilir, bkz. MarshalJSON.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"` // Sahiplik bilgisi response'ta gereksiz
	AmountCents int64     `json:"-"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalJSON, AmountCents'i API response'ta float units olarak sunar.
// DB'de 1234 cent → JSON'da 12.34.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction // alias: sonsuz MarshalJSON recursion'ını kırar
	return json.Marshal(struct {
		alias
		Amount float64 `json:"amount"`
	}{
		alias:  alias(t),
		Amount: float64(t.AmountCents) / 100.0,
	})
}

// CreateTransactionRequest, yeni işlem oluştururken gelen veri.
// Amount float olarak alınır (API sözleşmesi), validation sırasında
// cent'e çevrilir.
type CreateTransactionRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Validate, isteği kontrol eder ve tutarı cent'e çevirir.
//
// Kurallar:
//   - Amount pozitif olmalı
//   - En fazla 2 ondalık basamak (cent altı hassasiyet kabul edilmez)
//   - Currency 3 harfli kod — küçük harf gelirse büyütülür
//
// Dönen değer: tutar cent cinsinden.
func (r *CreateTransactionRequest) Validate() (int64, error) {
	if r.Amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	// Float'tan cent'e çevirirken yarım-cent hatalarına karşı yuvarla:
	// 12.34 float'ta tam temsil edilemez (12.339999...), doğrudan
	// int64(amount*100) truncate edip 1233 üretirdi.
	cents := math.Round(r.Amount * 100)
	if math.Abs(r.Amount*100-cents) > 1e-6 {
		return 0, fmt.Errorf("amount must have at most 2 decimal places")
	}
	if cents > math.MaxInt64 {
		return 0, fmt.Errorf("amount is too large")
	}

	currency, err := NormalizeCurrency(r.Currency)
	if err != nil {
		return 0, err
	}
	r.Currency = currency

	return int64(cents), nil
}

// TransactionListResponse, sayfalanmış işlem listesi.
type TransactionListResponse struct {
	Items      []*Transaction `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

// CurrencySummary, tek bir para birimi için toplam tutar.
type CurrencySummary struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"` // units cinsinden (cent değil)
}
