package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaydin/fintrack/pkg"
)

// newRateServer, exchangerate-api'nin /pair endpoint'ini taklit eden
// test sunucusu kurar ve istek sayacını döner.
func newRateServer(t *testing.T, rate float64) (*ConverterService, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"result":"success","conversion_rate":%g}`, rate)
	}))
	t.Cleanup(srv.Close)

	svc := NewConverterService("test-key", srv.URL, 5*time.Second, testLogger())
	t.Cleanup(svc.Close)
	return svc, &calls
}

func newErrorServer(t *testing.T, errorType string) *ConverterService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"result":"error","error-type":%q}`, errorType)
	}))
	t.Cleanup(srv.Close)

	svc := NewConverterService("test-key", srv.URL, 5*time.Second, testLogger())
	t.Cleanup(svc.Close)
	return svc
}

func TestConverterService_Convert(t *testing.T) {
	svc, _ := newRateServer(t, 32.5)

	rate, converted, err := svc.Convert(context.Background(), 10000, "USD", "TRY")
	require.NoError(t, err)
	assert.Equal(t, 32.5, rate)
	assert.Equal(t, 3250.0, converted)
}

func TestConverterService_Convert_RoundsToCents(t *testing.T) {
	svc, _ := newRateServer(t, 0.333333)

	_, converted, err := svc.Convert(context.Background(), 1000, "USD", "EUR")
	require.NoError(t, err)
	// 10 * 0.333333 = 3.33333 → 2 ondalığa yuvarlanır
	assert.Equal(t, 3.33, converted)
}

func TestConverterService_SameCurrency_SkipsAPI(t *testing.T) {
	svc, calls := newRateServer(t, 32.5)

	rate, converted, err := svc.Convert(context.Background(), 4200, "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
	assert.Equal(t, 42.0, converted)
	assert.Equal(t, int64(0), calls.Load(), "aynı para birimi API'ye gitmemeli")
}

func TestConverterService_CachesRate(t *testing.T) {
	svc, calls := newRateServer(t, 32.5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.Convert(ctx, 1000, "USD", "TRY")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), calls.Load(), "kur cache'ten gelmeli")

	// Ters yön ayrı cache anahtarıdır
	_, _, err := svc.Convert(ctx, 1000, "TRY", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestConverterService_APIErrors(t *testing.T) {
	tests := []struct {
		errorType string
		wantErr   error
	}{
		{"unsupported-code", pkg.ErrBadRequest},
		{"malformed-request", pkg.ErrBadRequest},
		{"invalid-key", pkg.ErrUnavailable},
		{"inactive-account", pkg.ErrUnavailable},
		{"quota-reached", pkg.ErrUnavailable},
		{"something-new", pkg.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.errorType, func(t *testing.T) {
			svc := newErrorServer(t, tt.errorType)
			_, _, err := svc.Convert(context.Background(), 1000, "USD", "XXX")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConverterService_UnavailableHidesDetail(t *testing.T) {
	// 503 cevabı altyapı detayı taşımamalı: geçersiz API key bile
	// istemciye tek tip mesaj olarak döner.
	svc := newErrorServer(t, "invalid-key")
	_, _, err := svc.Convert(context.Background(), 1000, "USD", "EUR")
	require.ErrorIs(t, err, pkg.ErrUnavailable)
	assert.NotContains(t, err.Error(), "invalid-key")
	assert.Contains(t, err.Error(), "currency conversion failed")
}

func TestConverterService_Unreachable(t *testing.T) {
	// Kapatılmış sunucu: bağlantı reddedilir.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := NewConverterService("test-key", url, time.Second, testLogger())
	defer svc.Close()

	_, _, err := svc.Convert(context.Background(), 1000, "USD", "EUR")
	assert.ErrorIs(t, err, pkg.ErrUnavailable)
}
