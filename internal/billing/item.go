// Package billing holds the pure invoice mathematics: line items, invoice
// totals, and the derived cost-of-goods-sold expense. Every function takes
// its rates as explicit parameters; nothing here reads configuration.
package billing

import (
	"fmt"

	"github.com/facturacr/facturacr/internal/models"
)

// InsufficientStockError rejects an item whose requested quantity exceeds
// the product's available stock. Service items are never subject to it.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}

// LineTotal computes a line total from a unit price (already converted to
// the invoice currency), a quantity and a discount percentage.
func LineTotal(unitPrice float64, quantity int, discountPercent float64) float64 {
	base := unitPrice * float64(quantity)
	return base - base*discountPercent/100
}

// BuildItem validates and assembles an invoice line for a product.
// unitPrice must already be in the invoice currency. The product's current
// acquisition cost is snapshotted onto the item as-is: cost is never
// currency-converted, even when price was.
//
// Non-service items are rejected when quantity exceeds available stock;
// service items bypass the stock check entirely and never mutate stock.
func BuildItem(p models.Product, unitPrice float64, quantity int, discountPercent float64, description string, service bool) (models.InvoiceItem, error) {
	if !service && p.Stock < quantity {
		return models.InvoiceItem{}, &InsufficientStockError{
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   quantity,
		}
	}
	cost := p.Cost
	return models.InvoiceItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		Price:       unitPrice,
		Cost:        &cost,
		Discount:    discountPercent,
		Description: description,
		Service:     service,
		Total:       LineTotal(unitPrice, quantity, discountPercent),
	}, nil
}
