package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaydin/fintrack/database"
	"github.com/akaydin/fintrack/models"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/pkg/token"
	"github.com/akaydin/fintrack/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(":memory:", database.MigrationsFS())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// captureMailer, gönderilen reset token'ını testin eline verir.
type captureMailer struct {
	lastEmail string
	lastToken string
	sendErr   error
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, toEmail, rawToken string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.lastEmail = toEmail
	m.lastToken = rawToken
	return nil
}

func newTestAuthService(t *testing.T, db *database.DB, mailer *captureMailer) *AuthService {
	t.Helper()
	tokens, err := token.NewAuthority("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db.Conn)
	resetRepo := repository.NewResetTokenRepository(db.Conn)
	return NewAuthService(userRepo, resetRepo, tokens, mailer, db.Conn, testLogger())
}

func registerTestUser(t *testing.T, svc *AuthService, email string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:    email,
		Password: "Sifre123!",
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		user, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "New@Example.com",
			Password: "Sifre123!",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "new@example.com", user.Email)
		// Plaintext şifre asla saklanmaz
		assert.NotEqual(t, "Sifre123!", user.PasswordHash)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "new@example.com",
			Password: "Sifre123!",
		})
		assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "weak@example.com",
			Password: "short",
		})
		assert.ErrorIs(t, err, pkg.ErrBadRequest)
	})
}

func TestAuthService_Login(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})
	ctx := context.Background()
	user := registerTestUser(t, svc, "login@example.com")

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "Login@Example.com", // normalize edilmeli
			Password: "Sifre123!",
		})
		require.NoError(t, err)
		assert.Equal(t, "bearer", resp.TokenType)

		// Üretilen token doğrulanabilir olmalı ve kullanıcıyı göstermeli
		subject, err := svc.tokens.Verify(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "login@example.com",
			Password: "YanlisSifre1!",
		})
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})

	t.Run("unknown email gets identical error", func(t *testing.T) {
		_, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "Sifre123!",
		})
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
		// Mesaj da aynı: hesap varlığı sızdırılmaz
		assert.ErrorContains(t, err, "incorrect email or password")
	})
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)
	ctx := context.Background()
	registerTestUser(t, svc, "reset@example.com")

	// 1. Sıfırlama isteği: email gönderilir, ham token yakalanır.
	require.NoError(t, svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{
		Email: "reset@example.com",
	}))
	require.NotEmpty(t, mailer.lastToken)
	assert.Equal(t, "reset@example.com", mailer.lastEmail)

	// 2. Token ile şifre sıfırlanır.
	require.NoError(t, svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:       mailer.lastToken,
		NewPassword: "YeniSifre1!",
	}))

	// 3. Yeni şifre ile giriş çalışır, eskisi çalışmaz.
	_, err := svc.Login(ctx, &models.LoginRequest{
		Email: "reset@example.com", Password: "YeniSifre1!",
	})
	assert.NoError(t, err)

	_, err = svc.Login(ctx, &models.LoginRequest{
		Email: "reset@example.com", Password: "Sifre123!",
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// 4. Aynı token ikinci kez kullanılamaz (sıfırlamada silindi).
	err = svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:       mailer.lastToken,
		NewPassword: "BaskaSifre1!",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	db := newTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)

	// Bilinmeyen email de nil döner — endpoint cevabı hesap varlığını
	// ele vermez. Email de gönderilmez.
	err := svc.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{
		Email: "nobody@example.com",
	})
	assert.NoError(t, err)
	assert.Empty(t, mailer.lastToken)
}

func TestAuthService_ForgotPassword_Cooldown(t *testing.T) {
	db := newTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)
	ctx := context.Background()
	registerTestUser(t, svc, "throttle@example.com")

	req := &models.ForgotPasswordRequest{Email: "throttle@example.com"}

	require.NoError(t, svc.ForgotPassword(ctx, req))
	firstToken := mailer.lastToken
	require.NotEmpty(t, firstToken)

	// Cooldown içinde ikinci istek: yeni token üretilmez.
	mailer.lastToken = ""
	require.NoError(t, svc.ForgotPassword(ctx, req))
	assert.Empty(t, mailer.lastToken)

	// Cooldown geçtikten sonra yeni token üretilir.
	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	require.NoError(t, svc.ForgotPassword(ctx, req))
	assert.NotEmpty(t, mailer.lastToken)
	assert.NotEqual(t, firstToken, mailer.lastToken)
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	db := newTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)
	ctx := context.Background()
	registerTestUser(t, svc, "expired@example.com")

	require.NoError(t, svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{
		Email: "expired@example.com",
	}))
	require.NotEmpty(t, mailer.lastToken)

	// Saati TTL'in ötesine al: token süresi dolmuş sayılmalı.
	svc.now = func() time.Time { return time.Now().Add(resetTokenTTL + time.Minute) }

	err := svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:       mailer.lastToken,
		NewPassword: "YeniSifre1!",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuthService_ResetPassword_InvalidToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	err := svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{
		Token:       "tamamen-uydurma-token",
		NewPassword: "YeniSifre1!",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuthService_CleanupExpiredTokens(t *testing.T) {
	db := newTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)
	ctx := context.Background()
	registerTestUser(t, svc, "cleanup@example.com")

	require.NoError(t, svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{
		Email: "cleanup@example.com",
	}))

	// Token henüz taze: temizlik dokunmamalı.
	svc.CleanupExpiredTokens(ctx)
	resetRepo := repository.NewResetTokenRepository(db.Conn)
	_, err := resetRepo.GetByTokenHash(ctx, hashResetToken(mailer.lastToken))
	assert.NoError(t, err)
}
