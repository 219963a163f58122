package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/facturacr/facturacr/internal/billing"
	"github.com/facturacr/facturacr/internal/currency"
	"github.com/facturacr/facturacr/internal/hacienda"
	"github.com/facturacr/facturacr/internal/httpx"
	"github.com/facturacr/facturacr/internal/ledger"
	"github.com/facturacr/facturacr/internal/models"
	"github.com/facturacr/facturacr/internal/storage"
	"github.com/facturacr/facturacr/internal/validation"
)

// InvoiceHandler drives the invoice lifecycle: building items from the
// catalog, computing totals, committing through the ledger, cancelling.
type InvoiceHandler struct {
	Store  storage.Store
	Ledger *ledger.Ledger

	// now is swappable for tests.
	now func() time.Time
}

func NewInvoiceHandler(store storage.Store, l *ledger.Ledger) *InvoiceHandler {
	return &InvoiceHandler{Store: store, Ledger: l, now: time.Now}
}

type invoiceItemRequest struct {
	ProductID   string   `json:"productId"`
	Quantity    int      `json:"quantity"`
	Discount    float64  `json:"discount"`
	Description string   `json:"description,omitempty"`
	Service     bool     `json:"service,omitempty"`
	// UnitPrice overrides the converted catalog price when set (the
	// operator edited the price at entry time). In invoice currency.
	UnitPrice *float64 `json:"unitPrice,omitempty"`
}

type createInvoiceRequest struct {
	CustomerID    string               `json:"customerId"`
	Currency      string               `json:"currency,omitempty"`
	Status        string               `json:"status,omitempty"` // paid (default) or pending
	PaymentMethod string               `json:"paymentMethod,omitempty"`
	SaleCondition string               `json:"saleCondition,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Reference     string               `json:"reference,omitempty"`
	Date          string               `json:"date,omitempty"`
	DueDate       string               `json:"dueDate,omitempty"`
	Items         []invoiceItemRequest `json:"items"`
}

// List: GET /invoices – newest first
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.ListAll(r.Context(), storage.CollectionInvoices)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	invoices, err := storage.DecodeAll[models.Invoice](docs)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_invoices", nil)
		return
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Date > invoices[j].Date })
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": len(invoices)})
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.GetOne(r.Context(), storage.CollectionInvoices, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	inv, err := storage.Decode[models.Invoice](doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create: POST /invoices
//
// Item prices are converted from each product's currency to the invoice
// currency at the configured exchange rate; stock sufficiency is checked
// here, at item-build time. The ledger then commits invoice, stock
// decrements and the derived cost expense as one batch. Nothing is
// persisted when any step fails.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("customerId", req.CustomerID, v)
	if len(req.Items) == 0 {
		v["items"] = "required"
	}
	for i, it := range req.Items {
		validation.Required(fmt.Sprintf("items[%d].productId", i), it.ProductID, v)
		validation.PositiveInt(fmt.Sprintf("items[%d].quantity", i), it.Quantity, v)
		validation.RangeFloat(fmt.Sprintf("items[%d].discount", i), it.Discount, 0, 100, v)
	}
	status := models.InvoiceStatus(req.Status)
	if status == "" {
		status = models.InvoiceStatusPaid
	}
	if status != models.InvoiceStatusPaid && status != models.InvoiceStatusPending {
		v["status"] = "must_be_paid_or_pending"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	settings, err := loadSettings(ctx, h.Store)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_settings", nil)
		return
	}
	productDocs, err := h.Store.ListAll(ctx, storage.CollectionProducts)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	products, err := storage.DecodeAll[models.Product](productDocs)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_products", nil)
		return
	}

	customerName := "Desconocido"
	if doc, err := h.Store.GetOne(ctx, storage.CollectionCustomers, req.CustomerID); err == nil {
		if c, derr := storage.Decode[models.Customer](doc); derr == nil {
			customerName = c.Name
		}
	}

	invCurrency := req.Currency
	if invCurrency == "" {
		invCurrency = settings.Currency
	}

	items := make([]models.InvoiceItem, 0, len(req.Items))
	for _, it := range req.Items {
		product, ok := findProduct(products, it.ProductID)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_product",
				map[string]string{"productId": it.ProductID})
			return
		}
		unitPrice := round2(currency.Convert(product.Price, product.Currency, invCurrency, settings.ExchangeRate).Amount)
		if it.UnitPrice != nil {
			unitPrice = *it.UnitPrice
		}
		item, err := billing.BuildItem(product, unitPrice, it.Quantity, it.Discount, it.Description, it.Service)
		if err != nil {
			var stockErr *billing.InsufficientStockError
			if errors.As(err, &stockErr) {
				httpx.JSONError(w, http.StatusBadRequest, "insufficient_stock", map[string]any{
					"productId": product.ID,
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			httpx.JSONError(w, http.StatusBadRequest, "invalid_item", nil)
			return
		}
		items = append(items, item)
	}

	totals := billing.ComputeTotals(items, settings.TaxRate)

	issuedAt := h.now()
	date := req.Date
	if date == "" {
		date = issuedAt.Format(models.DateLayout)
	}
	dueDate := req.DueDate
	if dueDate == "" {
		dueDate = issuedAt.AddDate(0, 0, 7).Format(models.DateLayout)
	}
	edoc := hacienda.Emit(issuedAt)

	inv := models.Invoice{
		ID:             uuid.NewString(),
		Number:         hacienda.InvoiceNumber(issuedAt),
		Consecutive:    edoc.Consecutive,
		ElectronicKey:  edoc.ElectronicKey,
		HaciendaStatus: edoc.Status,
		CustomerID:     req.CustomerID,
		CustomerName:   customerName,
		Date:           date,
		Time:           issuedAt.Format("15:04:05"),
		DueDate:        dueDate,
		Items:          items,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		Status:         status,
		PaymentMethod:  req.PaymentMethod,
		SaleCondition:  req.SaleCondition,
		Notes:          req.Notes,
		Reference:      req.Reference,
		Currency:       invCurrency,
		ExchangeRate:   settings.ExchangeRate,
	}

	res, err := h.Ledger.CreateInvoice(ctx, inv, products)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_commit_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

// Cancel: POST /invoices/{id}/cancel
//
// The already-cancelled guard lives here, not in the ledger: the ledger's
// cancel is deliberately not idempotent and this handler is the caller
// responsible for preventing a double restore.
func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	doc, err := h.Store.GetOne(ctx, storage.CollectionInvoices, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	inv, err := storage.Decode[models.Invoice](doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_decode_invoice", nil)
		return
	}
	if inv.Cancelled() {
		httpx.JSONError(w, http.StatusConflict, "already_cancelled", nil)
		return
	}

	// Storage commits first; the response mirrors the new state only after
	// a successful commit.
	if err := h.Ledger.CancelInvoice(ctx, id, inv.Items); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "cancel_commit_failed", nil)
		return
	}

	inv.Status = models.InvoiceStatusCancelled
	inv.HaciendaStatus = hacienda.StatusAnulado
	httpx.JSON(w, http.StatusOK, inv)
}

func findProduct(products []models.Product, id string) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
