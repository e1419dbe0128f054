package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/pkg/cache"
)

// Döviz kuru cache ayarları. Kurlar günde bir güncellenir, 1 saatlik
// cache yeterince taze ve API kotasını korur.
const (
	rateCacheTTL     = time.Hour
	rateCacheCleanup = 10 * time.Minute
)

// exchangeRateAPIBase, exchangerate-api.com v6 endpoint'i.
// Testlerde httptest sunucusuyla değiştirilir.
const exchangeRateAPIBase = "https://v6.exchangerate-api.com/v6"

// unavailableMessage, kur servisi hatalarında istemciye dönen TEK mesaj.
// Hatanın gerçek sebebi (geçersiz key, kota, ağ) sadece operasyonel
// kanala yazılır — istemciye altyapı detayı sızdırılmaz.
const unavailableMessage = "currency conversion failed"

// pairResponse, /pair endpoint'inin JSON cevabı.
// Sadece ihtiyacımız olan alanları tanımlarız, gerisi yok sayılır.
type pairResponse struct {
	Result         string  `json:"result"`
	ErrorType      string  `json:"error-type"`
	ConversionRate float64 `json:"conversion_rate"`
}

// ConverterService, harici kur API'si üzerinden para birimi çevirir.
type ConverterService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	rates   *cache.TTLCache[string, float64]
	logger  *slog.Logger
}

// NewConverterService, yeni bir ConverterService oluşturur.
// baseURL boş verilirse gerçek API kullanılır (testler kendi URL'ini geçer).
func NewConverterService(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *ConverterService {
	if baseURL == "" {
		baseURL = exchangeRateAPIBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ConverterService{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		rates:   cache.New[string, float64](rateCacheTTL, rateCacheCleanup),
		logger:  logger,
	}
}

// Close, kur cache'inin temizlik goroutine'ini durdurur.
func (s *ConverterService) Close() {
	s.rates.Close()
}

// Convert, cent cinsinden tutarı bir para biriminden diğerine çevirir.
// from/to kodlarının normalize edilmiş (büyük harf, 3 harf) geldiği
// varsayılır. Aynı para birimine çevirme API'ye gitmeden 1.0 kuruyla döner.
func (s *ConverterService) Convert(ctx context.Context, amountCents int64, from, to string) (rate, converted float64, err error) {
	amount := float64(amountCents) / 100

	if from == to {
		return 1, amount, nil
	}

	rate, err = s.fetchRate(ctx, from, to)
	if err != nil {
		return 0, 0, err
	}

	return rate, math.Round(amount*rate*100) / 100, nil
}

// fetchRate, kur değerini önce cache'ten, yoksa API'den alır.
func (s *ConverterService) fetchRate(ctx context.Context, from, to string) (float64, error) {
	cacheKey := from + ":" + to
	if rate, ok := s.rates.Get(cacheKey); ok {
		return rate, nil
	}

	url := fmt.Sprintf("%s/%s/pair/%s/%s", s.baseURL, s.apiKey, from, to)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", pkg.ErrUnavailable, unavailableMessage)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Error("exchange rate request failed", "error", err)
		return 0, fmt.Errorf("%w: %s", pkg.ErrUnavailable, unavailableMessage)
	}
	defer resp.Body.Close()

	var body pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.logger.Error("exchange rate response decode failed", "error", err)
		return 0, fmt.Errorf("%w: %s", pkg.ErrUnavailable, unavailableMessage)
	}

	if body.Result != "success" {
		return 0, s.translateAPIError(body.ErrorType)
	}
	if body.ConversionRate <= 0 {
		s.logger.Error("exchange rate API returned invalid rate", "rate", body.ConversionRate)
		return 0, fmt.Errorf("%w: %s", pkg.ErrUnavailable, unavailableMessage)
	}

	s.rates.Set(cacheKey, body.ConversionRate)
	return body.ConversionRate, nil
}

// translateAPIError, exchangerate-api hata kodlarını iç hata tiplerine çevirir.
// İstemci hatası sayılanlar (bilinmeyen kod) anlamlı 400 mesajı alır;
// geri kalan her şey tek tip 503'tür, ayrıntı operasyonel kanala gider.
func (s *ConverterService) translateAPIError(errorType string) error {
	switch errorType {
	case "unsupported-code":
		return fmt.Errorf("%w: unsupported currency code", pkg.ErrBadRequest)
	case "malformed-request":
		return fmt.Errorf("%w: malformed conversion request", pkg.ErrBadRequest)
	case "invalid-key", "inactive-account":
		s.logger.Error("exchange rate API credentials rejected", "error_type", errorType)
	case "quota-reached":
		s.logger.Warn("exchange rate API quota reached")
	default:
		s.logger.Error("exchange rate API error", "error_type", errorType)
	}
	return fmt.Errorf("%w: %s", pkg.ErrUnavailable, unavailableMessage)
}
