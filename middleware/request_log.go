package middleware

import (
	"net/http"
	"time"

	"github.com/akaydin/fintrack/handlers"
	"github.com/akaydin/fintrack/pkg/auditlog"
	"github.com/akaydin/fintrack/pkg/ratelimit"
)

// RequestLogger, her HTTP isteğini audit log dosyasına kaydeder.
//
// Zincirde UserInjection'dan SONRA durur: kimlik context'e çoktan
// yazılmıştır, log satırına kullanıcı emaili girer. Log yazımı asla
// isteği etkilemez; dosya hatası olsa bile istemci normal cevap alır.
type RequestLogger struct {
	writer *auditlog.Writer
	filter *auditlog.PathFilter
}

// NewRequestLogger, yeni bir RequestLogger middleware oluşturur.
func NewRequestLogger(writer *auditlog.Writer, filter *auditlog.PathFilter) *RequestLogger {
	return &RequestLogger{writer: writer, filter: filter}
}

// Handler, middleware zincirine eklenir.
func (m *RequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.filter.Excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		// http.ResponseWriter status kodunu geri okutmaz; sarmalayıp
		// WriteHeader çağrısını yakalarız.
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		identity := auditlog.AnonymousUser
		if user, ok := handlers.CurrentUser(r); ok {
			identity = user.Email
		}

		m.writer.Record(auditlog.Entry{
			Time:      start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    rec.status,
			ClientIP:  ratelimit.ExtractIP(r),
			User:      identity,
			UserAgent: r.UserAgent(),
			Query:     flattenQuery(r),
			Duration:  time.Since(start),
		})
	})
}

// statusRecorder, WriteHeader'a gelen status kodunu saklar.
// WriteHeader hiç çağrılmazsa Go 200 varsayar, biz de öyle başlatırız.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// flattenQuery, query string'i düz map'e indirger.
// Aynı anahtarın tekrarında ilk değer kazanır.
func flattenQuery(r *http.Request) map[string]string {
	values := r.URL.Query()
	if len(values) == 0 {
		return nil
	}
	flat := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			flat[key] = vals[0]
		}
	}
	return flat
}
