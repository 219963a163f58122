package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/facturacr/facturacr/internal/httpx"
	"github.com/facturacr/facturacr/internal/models"
	"github.com/facturacr/facturacr/internal/storage"
	"github.com/facturacr/facturacr/internal/validation"
)

// SettingsHandler serves the single settings/general record.
type SettingsHandler struct {
	Store storage.Store
}

func NewSettingsHandler(store storage.Store) *SettingsHandler {
	return &SettingsHandler{Store: store}
}

// loadSettings returns the stored settings, or the defaults when none have
// been saved yet. Legacy records without a hacienda block get one filled in.
func loadSettings(ctx context.Context, store storage.Store) (models.AppSettings, error) {
	doc, err := store.GetOne(ctx, storage.CollectionSettings, storage.SettingsID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.AppSettings{}, err
	}
	settings, err := storage.Decode[models.AppSettings](doc)
	if err != nil {
		return models.AppSettings{}, err
	}
	if settings.Hacienda == nil {
		settings.Hacienda = models.DefaultSettings().Hacienda
	}
	return settings, nil
}

// Get: GET /settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := loadSettings(r.Context(), h.Store)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_settings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

// Save: PUT /settings
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var settings models.AppSettings
	if err := httpx.DecodeJSON(r, &settings); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("companyName", settings.CompanyName, v)
	validation.RangeFloat("taxRate", settings.TaxRate, 0, 100, v)
	// A zero or negative exchange rate is tolerated: conversions substitute
	// the fallback rate rather than failing.
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Store.Upsert(r.Context(), storage.CollectionSettings, storage.SettingsID, settings); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_settings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

// round2 rounds to two decimals, the precision shown on invoices.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
