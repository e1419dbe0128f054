package models

import (
	"fmt"
	"strings"
)

// NormalizeCurrency, para birimi kodunu büyük harfe çevirir ve 3 harfli
// format kontrolü yapar. Transaction oluşturma ve conversion aynı kuralı
// paylaşır.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyRegex.MatchString(code) {
		return "", fmt.Errorf("currency must be a 3-letter code")
	}
	return code, nil
}

// ConversionResult, bir işlemin başka para birimine çevrilmiş hali.
// Tutarlar 2 ondalık basamağa yuvarlanmış units cinsindendir.
type ConversionResult struct {
	TransactionID   string  `json:"transaction_id"`
	FromCurrency    string  `json:"from_currency"`
	ToCurrency      string  `json:"to_currency"`
	OriginalAmount  float64 `json:"original_amount"`
	ConvertedAmount float64 `json:"converted_amount"`
	Rate            float64 `json:"rate"`
}
