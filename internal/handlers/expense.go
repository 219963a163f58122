package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/facturacr/facturacr/internal/httpx"
	"github.com/facturacr/facturacr/internal/models"
	"github.com/facturacr/facturacr/internal/storage"
	"github.com/facturacr/facturacr/internal/validation"
)

// ExpenseHandler serves manual expense records. System-derived COGS
// expenses land in the same collection but are written only by the ledger.
type ExpenseHandler struct {
	Store storage.Store
}

func NewExpenseHandler(store storage.Store) *ExpenseHandler {
	return &ExpenseHandler{Store: store}
}

// List: GET /expenses – newest first
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.ListAll(r.Context(), storage.CollectionExpenses)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_expenses", nil)
		return
	}
	expenses, err := storage.DecodeAll[models.Expense](docs)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_expenses", nil)
		return
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date > expenses[j].Date })
	httpx.JSON(w, http.StatusOK, map[string]any{"items": expenses, "total": len(expenses)})
}

// Create: POST /expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var e models.Expense
	if err := httpx.DecodeJSON(r, &e); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("category", e.Category, v)
	validation.NonNegativeFloat("amount", e.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date == "" {
		e.Date = time.Now().Format(models.DateLayout)
	}
	if e.Currency == "" {
		e.Currency = models.CurrencyCRC
	}
	if err := h.Store.Upsert(r.Context(), storage.CollectionExpenses, e.ID, e); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_expense", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

// Delete: DELETE /expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), storage.CollectionExpenses, chi.URLParam(r, "id")); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_expense", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
