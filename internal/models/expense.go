package models

// ExpenseCategoryCOGS is reserved for system-derived cost-of-goods-sold
// records. Expenses in this category are created at most once per invoice,
// at creation time, and are never reversed on cancellation.
const ExpenseCategoryCOGS = "Costo de Ventas"

// Expense is a money-out record. When system-derived, Reference holds the
// originating invoice's number (a weak back-reference, not ownership).
type Expense struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Provider    string  `json:"provider,omitempty"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Reference   string  `json:"reference,omitempty"`
}
