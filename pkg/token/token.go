// Package token — imzalı, süreli access token üretimi ve doğrulaması.
//
// JWT (JSON Web Token) nedir?
// Kullanıcı kimliğini doğrulamak için kullanılan, imzalanmış bir token.
// 3 parçadan oluşur: header.payload.signature
//
// Authority stateless çalışır: token'ın içindeki bilgiler (subject, iat, exp)
// secret ile imzalanır, doğrulama sırasında imza yeniden hesaplanıp
// karşılaştırılır. DB'ye gitmeden her request'te kullanıcının kim olduğu
// bilinir. Bedeli: server-side revocation yok — bir token ancak süresi
// dolunca ya da secret değişince geçersizleşir. Bu bilinçli bir trade-off'tur.
//
// Neden ayrı paket?
// Token doğrulaması hem auth service (login/register) hem middleware
// (her request) hem de testler tarafından kullanılır. services'e gömülü
// kalsaydı middleware → services bağımlılığı doğardı. pkg/token hiçbir
// proje içi pakete bağımlı değildir (leaf dependency).
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Doğrulama hata sınıfları.
//
// Üç sınıf iç tarafta (metrik, debug log) ayırt edilir ama HTTP response'ta
// HİÇBİR ZAMAN ayrıştırılmaz — hepsi aynı 401'e map'lenir. Aksi halde
// saldırgana "imza yanlış" ile "süresi dolmuş" arasındaki farkı söyleyen
// bir oracle verilmiş olur.
var (
	// ErrMalformed, token string'i parse edilemediğinde döner
	// (eksik parça, bozuk base64, geçersiz JSON).
	ErrMalformed = errors.New("malformed token")
	// ErrInvalidSignature, imza secret ile yeniden hesaplandığında
	// eşleşmediğinde döner. Karşılaştırma jwt kütüphanesi içinde
	// hmac.Equal ile yapılır — constant-time, timing leak yok.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired, now >= exp olduğunda döner. Sınır katıdır:
	// tam exp anında token artık geçersizdir.
	ErrExpired = errors.New("token expired")
)

const issuer = "fintrack"

// Claims, token payload'ı. Subject = kullanıcı ID'si.
type Claims struct {
	jwt.RegisteredClaims
}

// Authority, token üretip doğrulayan yapı.
//
// Tüm field'lar oluşturulduktan sonra değişmez (immutable) — Issue ve Verify
// hiçbir shared state'e yazmaz, bu yüzden lock gerekmeden goroutine-safe'tir.
type Authority struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration

	// now, test edilebilirlik için enjekte edilebilir saat.
	// Production'da time.Now; expiry sınır testlerinde sabitlenir.
	now func() time.Time
}

// NewAuthority, verilen secret/algoritma/ömür ile Authority oluşturur.
//
// algorithm: "HS256", "HS384" veya "HS512". Sadece HMAC ailesi kabul edilir —
// RS/ES gibi asimetrik algoritmalar bu kurulumda anlamsızdır (tek server,
// paylaşılan secret) ve "alg confusion" saldırı yüzeyini genişletir.
func NewAuthority(secret, algorithm string, ttl time.Duration) (*Authority, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q (only HMAC variants are allowed)", algorithm)
	}

	return &Authority{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue, verilen subject (doğrulanmış kullanıcının ID'si) için imzalı
// bir token üretir.
//
// Credential doğrulaması (şifre kontrolü) BURADA yapılmaz — çağıran taraf
// subject'in gerçekten doğrulanmış olduğunu garanti eder.
// Issue pure bir değer üretimidir: yan etkisi yoktur.
func (a *Authority) Issue(subject string) (string, error) {
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(a.method, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify, token string'ini doğrular ve subject'i döner.
//
// Kontrol sırası:
//  1. Yapı parse edilebiliyor mu? → değilse ErrMalformed
//  2. İmza secret ile eşleşiyor mu? → değilse ErrInvalidSignature
//  3. now < exp mi? → değilse ErrExpired
//
// Verify pure bir fonksiyondur: girdileri ve şu anki zaman dışında hiçbir
// şeye bakmaz, shared state'e yazmaz — her request'te parallel çağrılabilir.
func (a *Authority) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (any, error) {
			// Keyfunc içinde algoritma pinleme: token header'ındaki "alg"
			// bizim yapılandırdığımızdan farklıysa secret hiç verilmez.
			// "alg: none" veya HMAC→RSA downgrade saldırılarını keser.
			if t.Method.Alg() != a.method.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		},
		jwt.WithTimeFunc(a.now),
		jwt.WithValidMethods([]string{a.method.Alg()}),
	)

	if err != nil {
		return "", classifyError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", ErrMalformed
	}
	if claims.Subject == "" {
		return "", ErrMalformed
	}

	return claims.Subject, nil
}

// TTL, token ömrünü döner.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

// classifyError, jwt kütüphanesinin hata zincirini üç sınıfımıza indirger.
//
// jwt/v5 hataları errors.Join ile zincirler — errors.Is tüm zinciri tarar.
// Expired kontrolü imza kontrolünden ÖNCE gelirse, imzası bozuk ama süresi
// de dolmuş bir token "expired" olarak sınıflanırdı; imza hatası her zaman
// öncelikli tutulur.
func classifyError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		// Beklenmeyen doğrulama hataları (iat gelecekte vb.) — dışarıya
		// en genel sınıf olarak malformed verilir.
		return ErrMalformed
	}
}
