package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/facturacr/facturacr/internal/currency"
	"github.com/facturacr/facturacr/internal/httpx"
	"github.com/facturacr/facturacr/internal/models"
	"github.com/facturacr/facturacr/internal/storage"
	"github.com/facturacr/facturacr/internal/validation"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	Store storage.Store
}

func NewProductHandler(store storage.Store) *ProductHandler {
	return &ProductHandler{Store: store}
}

// List: GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.ListAll(r.Context(), storage.CollectionProducts)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	products, err := storage.DecodeAll[models.Product](docs)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", p.Name, v)
	validation.NonNegativeFloat("price", p.Price, v)
	validation.NonNegativeFloat("cost", p.Cost, v)
	if p.Stock < 0 {
		v["stock"] = "must_not_be_negative"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = models.CurrencyCRC
	}
	if err := h.Store.Upsert(r.Context(), storage.CollectionProducts, p.ID, p); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: PUT /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetOne(r.Context(), storage.CollectionProducts, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	var p models.Product
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p.ID = id
	if err := h.Store.Upsert(r.Context(), storage.CollectionProducts, id, p); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), storage.CollectionProducts, chi.URLParam(r, "id")); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Quote: GET /products/{id}/price?currency=CRC
// Returns the product's unit price converted to the requested invoice
// currency at the configured exchange rate, with a display description of
// the conversion (empty when none happened).
func (h *ProductHandler) Quote(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.GetOne(r.Context(), storage.CollectionProducts, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	p, err := storage.Decode[models.Product](doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_product", nil)
		return
	}
	settings, err := loadSettings(r.Context(), h.Store)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_settings", nil)
		return
	}

	to := r.URL.Query().Get("currency")
	if to == "" {
		to = settings.Currency
	}
	conv := currency.Convert(p.Price, p.Currency, to, settings.ExchangeRate)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"productId":  p.ID,
		"currency":   to,
		"unitPrice":  round2(conv.Amount),
		"conversion": conv.Description,
	})
}
