package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv, Load'un zorunlu tuttuğu değişkenleri ayarlar.
// t.Setenv test bitince eski değeri otomatik geri yükler.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("EXCHANGE_RATE_API_KEY", "test-api-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "./data/fintrack.db", cfg.Database.Path)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 10080, cfg.JWT.ExpiryMinutes)
	assert.Equal(t, "./logs", cfg.Log.Dir)
	assert.Equal(t, int64(5*1024*1024), cfg.Log.MaxSizeBytes)
	assert.Equal(t, 5, cfg.Log.MaxFiles)
	assert.Equal(t, []string{"/api/health", "/docs"}, cfg.Log.ExcludedPaths)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
}

func TestLoad_RequiredVariables(t *testing.T) {
	t.Run("missing JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")
		t.Setenv("EXCHANGE_RATE_API_KEY", "test-api-key")

		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET_KEY")
	})

	t.Run("missing exchange rate key", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "test-secret")
		t.Setenv("EXCHANGE_RATE_API_KEY", "")

		_, err := Load()
		assert.ErrorContains(t, err, "EXCHANGE_RATE_API_KEY")
	})
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "SERVER_PORT", "abc"},
		{"non-numeric expiry", "JWT_EXPIRY_MINUTES", "soon"},
		{"zero expiry", "JWT_EXPIRY_MINUTES", "0"},
		{"negative expiry", "JWT_EXPIRY_MINUTES", "-5"},
		{"non-numeric log size", "LOG_MAX_SIZE_MB", "big"},
		{"zero log size", "LOG_MAX_SIZE_MB", "0"},
		{"negative log size", "LOG_MAX_SIZE_MB", "-1"},
		{"zero max files", "LOG_MAX_FILES", "0"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_FractionalLogSize(t *testing.T) {
	setRequiredEnv(t)
	// MB-altı eşik: 0.001 MB ≈ 1048 byte. Düşük trafikli kurulumlar
	// ve testler için geçerli bir değer.
	t.Setenv("LOG_MAX_SIZE_MB", "0.001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1048), cfg.Log.MaxSizeBytes)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("JWT_EXPIRY_MINUTES", "60")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_EXCLUDED_PATHS", "/healthz, /metrics ,")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, 60, cfg.JWT.ExpiryMinutes)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	// Boş elemanlar atlanır, her eleman trim'lenir
	assert.Equal(t, []string{"/healthz", "/metrics"}, cfg.Log.ExcludedPaths)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestTokenTTL(t *testing.T) {
	c := JWTConfig{ExpiryMinutes: 90}
	assert.Equal(t, "1h30m0s", c.TokenTTL().String())
}
