package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akaydin/fintrack/models"
	"github.com/akaydin/fintrack/pkg"
	"github.com/akaydin/fintrack/services"
)

// TransactionHandler, finansal işlem endpoint'lerini yönetir.
// Tüm endpoint'ler RequireUser arkasındadır; CurrentUser her zaman dolu gelir.
type TransactionHandler struct {
	service   *services.TransactionService
	converter *services.ConverterService
}

// NewTransactionHandler, yeni bir TransactionHandler oluşturur.
func NewTransactionHandler(service *services.TransactionService, converter *services.ConverterService) *TransactionHandler {
	return &TransactionHandler{service: service, converter: converter}
}

// Create, POST /api/transactions endpoint'ini işler.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.service.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, tx)
}

// List, GET /api/transactions endpoint'ini işler.
// Query parametreleri: page (varsayılan 1), per_page (varsayılan 10, max 50).
// Sayısal olmayan değerler sessizce varsayılana düşer.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, err := h.service.List(r.Context(), user.ID, page, perPage)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, list)
}

// Get, GET /api/transactions/{id} endpoint'ini işler.
// Başka kullanıcının işlemi de, olmayan işlem de aynı 404'ü alır.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	tx, err := h.service.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, tx)
}

// Summary, GET /api/transactions/summary endpoint'ini işler.
// Para birimi bazında toplamlar alfabetik sıralı döner.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	summary, err := h.service.Summary(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, summary)
}

// Convert, GET /api/transactions/{id}/convert/{currency} endpoint'ini işler.
// Sahiplenilen bir işlemin tutarını hedef para birimine çevirir.
// İşlem yoksa veya başkasınınsa 404, kur servisi hatalarında 503 döner.
func (h *TransactionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	target, err := models.NormalizeCurrency(r.PathValue("currency"))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.service.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	rate, converted, err := h.converter.Convert(r.Context(), tx.AmountCents, tx.Currency, target)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.ConversionResult{
		TransactionID:   tx.ID,
		FromCurrency:    tx.Currency,
		ToCurrency:      target,
		OriginalAmount:  float64(tx.AmountCents) / 100,
		ConvertedAmount: converted,
		Rate:            rate,
	})
}
