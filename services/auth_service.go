// Package services, iş mantığı (business logic) katmanı.
//
// Handler'lar HTTP detaylarıyla, repository'ler SQL ile uğraşır;
// aradaki tüm kurallar (parola hash'leme, token üretme, cooldown,
// transaction sınırları) burada yaşar.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akaydin/fintrack/database"
	"github.com/akaydin/fintrack/models"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/pkg/email"
	"github.com/akaydin/fintrack/pkg/token"
	"github.com/akaydin/fintrack/repository"
)

// bcryptCost 12: varsayılan 10'dan yavaş ama brute-force'a karşı
// belirgin daha dirençli. Login başına ~250ms maliyet kabul edilebilir.
const bcryptCost = 12

// resetTokenTTL, parola sıfırlama linkinin geçerlilik süresi.
const resetTokenTTL = 20 * time.Minute

// resetCooldown, aynı kullanıcı için iki sıfırlama emaili arasındaki
// minimum süre. Email bombardımanını engeller.
const resetCooldown = time.Minute

// dummyHash, var olmayan kullanıcılar için sahte bcrypt karşılaştırması.
// Yoksa "kullanıcı yok" cevabı hash süresi kadar erken döner ve email
// enumeration'a zamanlama kanalı açılır.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthService, kayıt, giriş ve parola sıfırlama akışlarını yönetir.
type AuthService struct {
	userRepo  repository.UserRepository
	resetRepo repository.ResetTokenRepository
	tokens    *token.Authority
	mailer    email.EmailSender // nil olabilir: email gönderimi opsiyonel
	db        *sql.DB
	logger    *slog.Logger
	now       func() time.Time // testlerde sahte saat enjekte edilir
}

// NewAuthService, yeni bir AuthService oluşturur.
// db, parola sıfırlamada transaction açmak için gerekli (güncelle +
// token'ları sil tek atomik adım olmalı).
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.ResetTokenRepository,
	tokens *token.Authority,
	mailer email.EmailSender,
	db *sql.DB,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokens:    tokens,
		mailer:    mailer,
		db:        db,
		logger:    logger,
		now:       time.Now,
	}
}

// Register, yeni kullanıcı kaydeder.
// Email zaten kayıtlıysa pkg.ErrAlreadyExists döner (handler 409'a çevirir).
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email, // Validate() küçük harfe çevirdi
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login, email/parola doğrular ve access token üretir.
// Hangi alanın yanlış olduğu asla söylenmez — "email kayıtlı değil"
// cevabı, saldırgana kayıtlı email listesi çıkarma imkanı verir.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Kullanıcı yokken de bcrypt çalıştır: cevap süresi iki
			// durumda da aynı kalsın.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			return nil, fmt.Errorf("%w: incorrect email or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: incorrect email or password", pkg.ErrUnauthorized)
	}

	accessToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &models.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}

// ForgotPassword, sıfırlama token'ı üretir ve email gönderir.
//
// Her durumda nil döner: email kayıtlı değilse, cooldown'daysa veya
// gönderim başarısızsa bile. Aksi halde endpoint'in cevabı "bu email
// kayıtlı mı?" sorusunun cevabına dönüşür.
func (s *AuthService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			s.logger.Debug("password reset requested for unknown email")
			return nil
		}
		s.logger.Error("forgot password lookup failed", "error", err)
		return nil
	}

	// Cooldown: son token çok yeniyse sessizce atla.
	if latest, err := s.resetRepo.GetLatestByUserID(ctx, user.ID); err == nil {
		if s.now().UTC().Sub(latest.CreatedAt) < resetCooldown {
			s.logger.Debug("password reset throttled", "user_id", user.ID)
			return nil
		}
	}

	rawToken, err := generateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", "error", err)
		return nil
	}

	resetToken := &models.PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hashResetToken(rawToken),
		ExpiresAt: s.now().UTC().Add(resetTokenTTL),
		CreatedAt: s.now().UTC(),
	}
	if err := s.resetRepo.Create(ctx, resetToken); err != nil {
		s.logger.Error("failed to store reset token", "error", err)
		return nil
	}

	if s.mailer == nil {
		s.logger.Warn("email sender not configured, reset token generated but not sent",
			"user_id", user.ID)
		return nil
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, rawToken); err != nil {
		s.logger.Error("failed to send reset email", "user_id", user.ID, "error", err)
		return nil
	}

	s.logger.Info("password reset email sent", "user_id", user.ID)
	return nil
}

// ResetPassword, geçerli bir sıfırlama token'ı ile parolayı değiştirir.
// Parola güncelleme ve token temizliği tek transaction içinde yapılır;
// yarısı uygulanmış durum kalamaz.
func (s *AuthService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	stored, err := s.resetRepo.GetByTokenHash(ctx, hashResetToken(req.Token))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
		}
		return err
	}

	if s.now().UTC().After(stored.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Transaction'a bağlı repository'ler: aynı SQL kodu, farklı querier.
	err = database.WithTx(ctx, s.db, func(tx database.TxQuerier) error {
		if err := repository.NewUserRepository(tx).UpdatePassword(ctx, stored.UserID, string(hash)); err != nil {
			return err
		}
		return repository.NewResetTokenRepository(tx).DeleteByUserID(ctx, stored.UserID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset completed", "user_id", stored.UserID)
	return nil
}

// CleanupExpiredTokens, süresi geçmiş sıfırlama token'larını siler.
// main.go bunu periyodik bir goroutine'den çağırır.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) {
	deleted, err := s.resetRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("reset token cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Debug("expired reset tokens cleaned", "count", deleted)
	}
}

// generateResetToken, 32 byte kriptografik rastgelelikten hex token üretir.
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashResetToken, ham token'ın SHA-256 hex hash'ini döner.
// Veritabanı sızarsa bile saklanan hash'lerden token üretilemez.
func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
