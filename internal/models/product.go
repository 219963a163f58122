package models

// Supported currency codes. Conversion between any other pair is a no-op.
const (
	CurrencyCRC = "CRC"
	CurrencyUSD = "USD"
)

// Product is an inventory item offered for sale.
// Stock is only ever mutated by the invoice lifecycle (creation decrements,
// cancellation restores); there is no other legal write path.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	SKU         string  `json:"sku,omitempty"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost,omitempty"` // acquisition cost, 0 when unknown
	Currency    string  `json:"currency"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category,omitempty"`
}
