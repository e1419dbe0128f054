// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Go'da "struct" bir veri yapısıdır — birden fazla field'ı bir arada tutar.
// Config struct'ı tüm ayarları tek bir yerde toplar, böylece
// her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — Single Responsibility: her struct tek bir concern'ü temsil eder.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	Exchange ExchangeConfig
	Email    EmailConfig
	CORS     CORSConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/fintrack.db)
}

// JWTConfig, access token ayarları.
type JWTConfig struct {
	Secret        string // Token imzalama anahtarı — GİZLİ TUTULMALI
	Algorithm     string // İmza algoritması (HS256, HS384, HS512)
	ExpiryMinutes int    // Token ömrü, dakika cinsinden (varsayılan: 10080 = 7 gün)
}

// LogConfig, request audit log ayarları.
//
// Buradaki ayarlar audit log DOSYASINI yönetir (her request'in kaydı).
// Level ise operasyonel logger'ın (stderr'e yazılan slog) seviyesidir —
// iki kanal birbirinden bağımsızdır: audit dosyası request kayıtlarını,
// operasyonel kanal uygulamanın kendi hata/bilgi mesajlarını taşır.
type LogConfig struct {
	Dir           string     // Log dosyalarının dizini (ör: ./logs)
	MaxSizeBytes  int64      // Rotasyon eşiği, byte cinsinden
	MaxFiles      int        // Saklanan rotated dosya sayısı
	ExcludedPaths []string   // Kaydedilmeyecek path prefix'leri
	Level         slog.Level // Operasyonel log seviyesi
}

// ExchangeConfig, döviz kuru API ayarları (exchangerate-api.com).
type ExchangeConfig struct {
	APIKey  string
	Timeout time.Duration
}

// EmailConfig, şifre sıfırlama email'i için Resend ayarları.
// ResendAPIKey boşsa forgot-password akışı devre dışı kalır — uygulama yine çalışır.
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppURL       string
}

// CORSConfig, izin verilen origin listesi.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
//
// Go'da error handling: Go'da exception/try-catch yoktur.
// Fonksiyonlar hata durumunda (value, error) tuple'ı döner.
// Çağıran taraf her zaman error'ı kontrol ETMEK ZORUNDADIR.
func Load() (*Config, error) {
	// .env dosyasını yükle — dosya yoksa hata vermez, sessizce devam eder.
	// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	// JWT_SECRET_KEY zorunlu — default YOK. Secret olmadan token imzalanamaz,
	// tahmin edilebilir bir default ise tüm tokenların forge edilebilmesi demektir.
	jwtSecret := getEnv("JWT_SECRET_KEY", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	expiryMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRY_MINUTES", "10080"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_MINUTES: %w", err)
	}
	if expiryMinutes <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY_MINUTES must be positive, got %d", expiryMinutes)
	}

	// LOG_MAX_SIZE_MB float olarak parse edilir — 0.001 gibi MB-altı eşikler
	// düşük trafikli kurulumlar için geçerli değerlerdir.
	maxSizeMB, err := strconv.ParseFloat(getEnv("LOG_MAX_SIZE_MB", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_SIZE_MB: %w", err)
	}
	if maxSizeMB <= 0 {
		return nil, fmt.Errorf("LOG_MAX_SIZE_MB must be positive, got %g", maxSizeMB)
	}
	maxSizeBytes := int64(maxSizeMB * 1024 * 1024)
	if maxSizeBytes < 1 {
		maxSizeBytes = 1
	}

	maxFiles, err := strconv.Atoi(getEnv("LOG_MAX_FILES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_FILES: %w", err)
	}
	if maxFiles < 1 {
		return nil, fmt.Errorf("LOG_MAX_FILES must be at least 1, got %d", maxFiles)
	}

	logLevel, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	exchangeKey := getEnv("EXCHANGE_RATE_API_KEY", "")
	if exchangeKey == "" {
		return nil, fmt.Errorf("EXCHANGE_RATE_API_KEY environment variable is required")
	}

	exchangeTimeout, err := strconv.Atoi(getEnv("EXCHANGE_RATE_API_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXCHANGE_RATE_API_TIMEOUT_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/fintrack.db"),
		},
		JWT: JWTConfig{
			Secret:        jwtSecret,
			Algorithm:     getEnv("JWT_ALGORITHM", "HS256"),
			ExpiryMinutes: expiryMinutes,
		},
		Log: LogConfig{
			Dir:           getEnv("LOG_DIR", "./logs"),
			MaxSizeBytes:  maxSizeBytes,
			MaxFiles:      maxFiles,
			ExcludedPaths: splitList(getEnv("LOG_EXCLUDED_PATHS", "/api/health,/docs")),
			Level:         logLevel,
		},
		Exchange: ExchangeConfig{
			APIKey:  exchangeKey,
			Timeout: time.Duration(exchangeTimeout) * time.Second,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("EMAIL_FROM", "noreply@fintrack.app"),
			AppURL:       getEnv("APP_URL", "http://localhost:3000"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8000")),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:8000").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TokenTTL, JWT ömrünü time.Duration olarak döner.
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

// parseLogLevel, "debug"/"info"/"warn"/"error" string'ini slog.Level'a çevirir.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL: %q (expected debug, info, warn or error)", s)
	}
}

// splitList, virgülle ayrılmış env değerini string slice'a çevirir.
// Boş elemanlar atlanır, her eleman trim'lenir.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
