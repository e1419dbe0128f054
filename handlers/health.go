package handlers

import (
	"database/sql"
	"net/http"

	"github.com/akaydin/fintrack/pkg"
)

// HealthHandler, sağlık kontrolü endpoint'ini yönetir.
// Load balancer ve monitoring araçları bu endpoint'i yoklar; audit
// log'dan varsayılan olarak hariç tutulur (LOG_EXCLUDED_PATHS).
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler, yeni bir HealthHandler oluşturur.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check, GET /api/health endpoint'ini işler.
// Veritabanı ping'i başarısızsa 503 döner, aksi halde 200.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		pkg.ErrorWithMessage(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
