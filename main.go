// FinTrack API — kişisel finans takip servisi.
//
// Bu dosya uygulamanın "composition root"udur: tüm katmanlar burada
// oluşturulur ve birbirine bağlanır. Bağımlılık yönü hep içe doğrudur:
//
//	main → handlers → services → repository → database
//
// Hiçbir alt katman üst katmanı import etmez.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akaydin/fintrack/config"
	"github.com/akaydin/fintrack/database"
	"github.com/akaydin/fintrack/handlers"
	"github.com/akaydin/fintrack/middleware"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/pkg/auditlog"
	"github.com/akaydin/fintrack/pkg/email"
	"github.com/akaydin/fintrack/pkg/ratelimit"
	"github.com/akaydin/fintrack/pkg/token"
	"github.com/akaydin/fintrack/repository"
	"github.com/akaydin/fintrack/services"
)

// Login rate limit: IP başına dakikada 5 deneme.
const (
	loginMaxAttempts = 5
	loginWindow      = time.Minute
)

// resetCleanupInterval, süresi geçmiş parola sıfırlama token'larının
// temizlenme aralığı.
const resetCleanupInterval = time.Hour

func main() {
	// ---- Konfigürasyon ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// ---- Operasyonel logger (stderr) ----
	// Audit log'dan ayrı bir kanal: uygulamanın kendi mesajları buraya,
	// request kayıtları dosyaya gider.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	// ---- Veritabanı ----
	db, err := database.New(cfg.Database.Path, database.MigrationsFS())
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// ---- Audit log writer ----
	auditWriter, err := auditlog.NewWriter(cfg.Log.Dir, cfg.Log.MaxSizeBytes, cfg.Log.MaxFiles, logger)
	if err != nil {
		logger.Error("failed to initialize audit log", "error", err)
		os.Exit(1)
	}
	defer auditWriter.Close()

	pathFilter := auditlog.NewPathFilter(cfg.Log.ExcludedPaths)

	// ---- Token authority ----
	tokens, err := token.NewAuthority(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.TokenTTL())
	if err != nil {
		logger.Error("failed to initialize token authority", "error", err)
		os.Exit(1)
	}

	// ---- Repository katmanı ----
	userRepo := repository.NewUserRepository(db.Conn)
	txRepo := repository.NewTransactionRepository(db.Conn)
	resetRepo := repository.NewResetTokenRepository(db.Conn)

	// ---- Email (opsiyonel) ----
	var mailer email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
	} else {
		logger.Warn("RESEND_API_KEY not set, password reset emails disabled")
	}

	// ---- Service katmanı ----
	authService := services.NewAuthService(userRepo, resetRepo, tokens, mailer, db.Conn, logger)
	txService := services.NewTransactionService(txRepo, logger)
	converter := services.NewConverterService(cfg.Exchange.APIKey, "", cfg.Exchange.Timeout, logger)
	defer converter.Close()

	// ---- Rate limiter ----
	loginLimiter := ratelimit.NewLoginRateLimiter(loginMaxAttempts, loginWindow)
	defer loginLimiter.Close()

	// ---- Handler katmanı ----
	authHandler := handlers.NewAuthHandler(authService, loginLimiter, logger)
	txHandler := handlers.NewTransactionHandler(txService, converter)
	healthHandler := handlers.NewHealthHandler(db.Conn)

	// ---- Middleware ----
	// Public path'lerde token çözümü ve DB lookup'ı atlanır.
	publicPaths := []string{"/api/auth/", "/api/health"}
	userInjection := middleware.NewUserInjection(tokens, userRepo, publicPaths, logger)
	requireUser := middleware.NewRequireUser()
	requestLogger := middleware.NewRequestLogger(auditWriter, pathFilter)

	// ---- Route'lar ----
	// Go 1.22+ ServeMux: pattern'de HTTP metodu ve path parametresi
	// ("{id}") desteklenir, ayrıca router kütüphanesi gerekmez.
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", healthHandler.Check)
	mux.HandleFunc("GET /api", func(w http.ResponseWriter, r *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]string{
			"name":    "FinTrack API",
			"version": "1.0.0",
		})
	})

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.Handle("GET /api/users/me", requireUser.Require(http.HandlerFunc(authHandler.Me)))

	mux.Handle("POST /api/transactions", requireUser.Require(http.HandlerFunc(txHandler.Create)))
	mux.Handle("GET /api/transactions", requireUser.Require(http.HandlerFunc(txHandler.List)))
	mux.Handle("GET /api/transactions/summary", requireUser.Require(http.HandlerFunc(txHandler.Summary)))
	mux.Handle("GET /api/transactions/{id}", requireUser.Require(http.HandlerFunc(txHandler.Get)))
	mux.Handle("GET /api/transactions/{id}/convert/{currency}", requireUser.Require(http.HandlerFunc(txHandler.Convert)))

	// ---- Middleware zinciri ----
	// Sıra önemli: UserInjection kimliği context'e KOYAR, RequestLogger
	// OKUR. Logger içte olmalı ki log satırında kullanıcı görünsün.
	var handler http.Handler = mux
	handler = requestLogger.Handler(handler)
	handler = userInjection.Handler(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(handler)

	// ---- Arka plan temizliği ----
	// Süresi geçmiş sıfırlama token'ları periyodik silinir.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(resetCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				authService.CleanupExpiredTokens(cleanupCtx)
			}
		}
	}()

	// ---- HTTP server + graceful shutdown ----
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// SIGINT/SIGTERM geldiğinde ctx iptal olur, server nazikçe kapanır.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}

	logger.Info("server stopped")
}
