package models

// InvoiceStatus is the payment status of an invoice. Transitions are
// monotonic: paid|pending → cancelled, never back.
type InvoiceStatus string

const (
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// DateLayout is the calendar-date format used on stored documents.
const DateLayout = "2006-01-02"

// InvoiceItem is one line of an invoice. Price is denominated in the
// invoice's currency (already converted at entry time); Cost is a snapshot
// of the product's acquisition cost and is never currency-converted.
type InvoiceItem struct {
	ProductID   string   `json:"productId"`
	ProductName string   `json:"productName"`
	Quantity    int      `json:"quantity"`
	Price       float64  `json:"price"`
	Cost        *float64 `json:"cost,omitempty"`
	Discount    float64  `json:"discount,omitempty"` // percent, 0..100
	Description string   `json:"description,omitempty"`
	Service     bool     `json:"service,omitempty"` // services bypass stock entirely
	Total       float64  `json:"total"`
}

// Invoice is a sales document. Items are append-only once created; a
// cancelled invoice is immutable except for its status fields.
type Invoice struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	Consecutive   string        `json:"consecutive,omitempty"`
	ElectronicKey string        `json:"electronicKey,omitempty"`
	// HaciendaStatus is the external-document-status dimension, independent
	// of payment status; "anulado" mirrors cancellation.
	HaciendaStatus string        `json:"haciendaStatus,omitempty"`
	CustomerID     string        `json:"customerId"`
	CustomerName   string        `json:"customerName"`
	Date           string        `json:"date"`
	Time           string        `json:"time,omitempty"`
	DueDate        string        `json:"dueDate"`
	Items          []InvoiceItem `json:"items"`
	Subtotal       float64       `json:"subtotal"`
	Tax            float64       `json:"tax"`
	Total          float64       `json:"total"`
	Status         InvoiceStatus `json:"status"`
	PaymentMethod  string        `json:"paymentMethod,omitempty"`
	SaleCondition  string        `json:"saleCondition,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Reference      string        `json:"reference,omitempty"`
	Currency       string        `json:"currency"`
	// ExchangeRate is the CRC-per-USD rate snapshotted at creation, for audit.
	ExchangeRate float64 `json:"exchangeRate,omitempty"`
}

// Cancelled reports whether the invoice has reached its terminal status.
func (inv *Invoice) Cancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}
