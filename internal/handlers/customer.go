package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/facturacr/facturacr/internal/httpx"
	"github.com/facturacr/facturacr/internal/models"
	"github.com/facturacr/facturacr/internal/storage"
	"github.com/facturacr/facturacr/internal/validation"
)

// CustomerHandler serves the customer registry.
type CustomerHandler struct {
	Store storage.Store
}

func NewCustomerHandler(store storage.Store) *CustomerHandler {
	return &CustomerHandler{Store: store}
}

// List: GET /customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.ListAll(r.Context(), storage.CollectionCustomers)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	customers, err := storage.DecodeAll[models.Customer](docs)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": len(customers)})
}

// Create: POST /customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", c.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := h.Store.Upsert(r.Context(), storage.CollectionCustomers, c.ID, c); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}
