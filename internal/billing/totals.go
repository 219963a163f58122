package billing

import "github.com/facturacr/facturacr/internal/models"

// Totals holds the aggregated amounts of an invoice, in invoice currency.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// ComputeTotals aggregates line totals into subtotal, flat tax and total.
// Tax is uniform: taxRate percent applied to the whole subtotal, with no
// per-item exemptions.
func ComputeTotals(items []models.InvoiceItem, taxRate float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Total
	}
	tax := subtotal * taxRate / 100
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
