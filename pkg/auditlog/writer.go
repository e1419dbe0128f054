// Package auditlog — boyut sınırlı, rotasyonlu request audit log'u.
//
// Her tamamlanan HTTP request için tek satır yazılır. Aktif dosya
// (api_requests.log) eşiği aşınca rotasyon yapılır: mevcut rotated dosyalar
// bir index kaydırılır (.1 → .2, .2 → .3, ...), en eskisi retention
// sınırını aşarsa silinir, aktif dosya .1 olur ve taze bir aktif dosya açılır.
// Böylece .1 her zaman en yeni rotated dosyadır ve toplam rotated dosya
// sayısı hiçbir zaman maxFiles'ı aşmaz.
//
// Concurrency modeli:
// Writer, aktif dosya handle'ını ve byte sayacını TEK sahip olarak tutar.
// Record içindeki append + rotasyon kontrolü tek bir kritik bölgedir —
// sync.Mutex ile serialize edilir. İki append birbirine karışamaz,
// bir append bir rotasyonun ortasına giremez, iki rotasyon üst üste binemez.
// Global mutable state YOK: handle bu struct'ın içinde yaşar, dışarıya sızmaz.
//
// Hata semantiği:
// Yazma/rotasyon hatası request path'ine ASLA yansımaz. Hata operasyonel
// kanala (slog) raporlanır ve bir sonraki Record bağımsız olarak denenir —
// retry kuyruğu yok, her kayıt best-effort'tur. Geçici bir disk hatası
// kendiliğinden düzelir ama arada kaybolan kayıtlar geri gelmez.
package auditlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ActiveFileName, aktif log dosyasının adı. Rotated dosyalar
// "api_requests.log.1" .. "api_requests.log.N" olarak adlandırılır.
const ActiveFileName = "api_requests.log"

// AnonymousUser, kimliği çözülemeyen istekler için log satırına yazılan işaret.
const AnonymousUser = "Anonymous"

// Entry, tamamlanmış bir request'in audit kaydı.
//
// Request/response BODY bilinçli olarak yoktur — body'ler şifre, token gibi
// secret taşıyabilir ve log dosyasında kalıcılaşmamalıdır.
type Entry struct {
	Time      time.Time
	Method    string
	Path      string
	Status    int
	ClientIP  string
	User      string // Doğrulanmış kullanıcı kimliği veya boş (→ Anonymous yazılır)
	UserAgent string
	Query     map[string]string
	Duration  time.Duration
}

// Writer, rotasyonlu audit log yazıcısı.
type Writer struct {
	mu   sync.Mutex
	file *os.File // Aktif dosya handle'ı — sadece mu altında erişilir
	size int64    // Aktif dosyanın mevcut boyutu (byte)

	path     string // Aktif dosyanın tam yolu
	maxSize  int64  // Rotasyon eşiği (byte)
	maxFiles int    // Saklanan rotated dosya sayısı
	logger   *slog.Logger
}

// NewWriter, log dizinini oluşturur, aktif dosyayı append modunda açar
// ve mevcut boyutunu okur (restart sonrası sayaç kaldığı yerden devam eder).
func NewWriter(dir string, maxSize int64, maxFiles int, logger *slog.Logger) (*Writer, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("auditlog: max size must be at least 1 byte, got %d", maxSize)
	}
	if maxFiles < 1 {
		return nil, fmt.Errorf("auditlog: max files must be at least 1, got %d", maxFiles)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("auditlog: failed to create log directory: %w", err)
	}

	w := &Writer{
		path:     filepath.Join(dir, ActiveFileName),
		maxSize:  maxSize,
		maxFiles: maxFiles,
		logger:   logger,
	}

	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Record, entry'yi tek satır olarak aktif dosyaya yazar ve gerekiyorsa
// rotasyon yapar. Hata döndürmez — yazma hatası operasyonel kanala gider,
// çağıran (request path) hiçbir zaman bloklanmaz veya hata görmez.
//
// Append + rotasyon kontrolü tek kritik bölgedir: Record birden fazla
// goroutine'den aynı anda çağrılabilir, satırlar asla iç içe geçmez.
func (w *Writer) Record(e Entry) {
	line := formatLine(e)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Önceki Record'da dosya açılamamış olabilir (ör. disk geçici unwritable).
	// Her kayıt bağımsız bir deneme: handle yoksa yeniden açmayı dene.
	if w.file == nil {
		if err := w.open(); err != nil {
			w.logger.Error("audit log unavailable, record dropping",
				slog.String("error", err.Error()))
			return
		}
	}

	n, err := w.file.WriteString(line)
	w.size += int64(n)
	if err != nil {
		w.logger.Error("audit log write failed",
			slog.String("error", err.Error()),
			slog.String("path", w.path))
		return
	}

	// Rotasyon kontrolü yazmadan SONRA yapılır — tek bir kayıt dosyayı
	// eşiğin bir kayıt kadar üstüne taşıyabilir, bir sonraki kontrol yakalar.
	if w.size >= w.maxSize {
		if err := w.rotate(); err != nil {
			w.logger.Error("audit log rotation failed",
				slog.String("error", err.Error()),
				slog.String("path", w.path))
		}
	}
}

// Close, aktif dosya handle'ını kapatır.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// open, aktif dosyayı append modunda açar ve boyut sayacını günceller.
// Çağıran mu'yu tutuyor olmalıdır (veya constructor'dan, henüz paylaşılmadan).
func (w *Writer) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("auditlog: failed to open %s: %w", w.path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("auditlog: failed to stat %s: %w", w.path, err)
	}

	w.file = f
	w.size = info.Size()
	return nil
}

// rotate, shift-and-evict algoritması. Çağıran mu'yu tutuyor olmalıdır.
//
//  1. Aktif dosyayı kapat.
//  2. i = maxFiles-1'den 1'e: .i varsa .(i+1)'e taşı — i+1 > maxFiles
//     olacaksa taşıma yerine sil (retention sınırı).
//  3. Aktif dosyayı .1 yap — en yeni rotated her zaman .1'dir.
//  4. Taze bir aktif dosya aç.
//
// Adım 2'deki döngü yukarıdan aşağı gider: önce en eski kaydırılır ki
// bir sonraki rename'in hedefi her zaman boş olsun.
func (w *Writer) rotate() error {
	if err := w.file.Close(); err != nil {
		w.file = nil
		return fmt.Errorf("failed to close active file: %w", err)
	}
	w.file = nil

	// En eski dosya retention sınırındaysa sil
	oldest := w.indexPath(w.maxFiles)
	if _, err := os.Stat(oldest); err == nil {
		if err := os.Remove(oldest); err != nil {
			return fmt.Errorf("failed to evict %s: %w", oldest, err)
		}
	}

	// Kalanları bir index yukarı kaydır: .N-1 → .N, ..., .1 → .2
	for i := w.maxFiles - 1; i >= 1; i-- {
		src := w.indexPath(i)
		if _, err := os.Stat(src); err != nil {
			continue // bu index'te dosya yok
		}
		if err := os.Rename(src, w.indexPath(i+1)); err != nil {
			return fmt.Errorf("failed to shift %s: %w", src, err)
		}
	}

	// Aktif dosya .1 olur
	if err := os.Rename(w.path, w.indexPath(1)); err != nil {
		return fmt.Errorf("failed to rotate active file: %w", err)
	}

	// Taze aktif dosya — başarısız olursa handle nil kalır,
	// bir sonraki Record yeniden dener.
	return w.open()
}

// indexPath, rotation index'inin dosya yolunu döner (1 → "....log.1").
func (w *Writer) indexPath(i int) string {
	return fmt.Sprintf("%s.%d", w.path, i)
}

// formatLine, entry'yi sabit alan sıralı tek satıra çevirir:
//
//	[2024-01-15 10:30:45.123] GET /api/transactions - Status: 200 - IP: 1.2.3.4 - User: a@b.com - UserAgent: curl/8.0 - Query: {"page":"2"} - Duration: 12ms
func formatLine(e Entry) string {
	user := e.User
	if user == "" {
		user = AnonymousUser
	}

	// Query map'i deterministik JSON objesi olarak yazılır —
	// encoding/json map key'leri sıralar, satır format'ı byte-stabil kalır.
	query := e.Query
	if query == nil {
		query = map[string]string{}
	}
	queryJSON, err := json.Marshal(query)
	if err != nil {
		queryJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(e.Time.Format("2006-01-02 15:04:05.000"))
	b.WriteString("] ")
	b.WriteString(e.Method)
	b.WriteByte(' ')
	b.WriteString(e.Path)
	b.WriteString(" - Status: ")
	fmt.Fprintf(&b, "%d", e.Status)
	b.WriteString(" - IP: ")
	b.WriteString(e.ClientIP)
	b.WriteString(" - User: ")
	b.WriteString(user)
	b.WriteString(" - UserAgent: ")
	b.WriteString(e.UserAgent)
	b.WriteString(" - Query: ")
	b.Write(queryJSON)
	b.WriteString(" - Duration: ")
	fmt.Fprintf(&b, "%dms", e.Duration.Milliseconds())
	b.WriteByte('\n')
	return b.String()
}
