package billing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/facturacr/facturacr/internal/models"
)

// COGSProvider is recorded as the provider of system-derived expenses.
const COGSProvider = "Inventario Interno"

// DeriveExpense derives the automatic cost-of-goods-sold expense for an
// invoice. Per item it uses the snapshotted cost when present, else the
// referenced product's current cost, else 0. It returns nil when the total
// cost is zero (e.g. an all-services invoice): the expense is a conditional
// side effect, not a guaranteed one.
//
// The expense amount keeps the raw unit costs and is tagged with the
// invoice's currency without conversion. Costs are assumed commensurate
// with the invoice currency; a known simplification carried over as-is.
func DeriveExpense(inv models.Invoice, products []models.Product) *models.Expense {
	var totalCost float64
	for _, it := range inv.Items {
		unitCost := 0.0
		if it.Cost != nil {
			unitCost = *it.Cost
		} else if p, ok := findProduct(products, it.ProductID); ok {
			unitCost = p.Cost
		}
		totalCost += unitCost * float64(it.Quantity)
	}
	if totalCost <= 0 {
		return nil
	}
	return &models.Expense{
		ID:          uuid.NewString(),
		Date:        inv.Date,
		Provider:    COGSProvider,
		Category:    models.ExpenseCategoryCOGS,
		Description: fmt.Sprintf("Costo de mercadería vendida - Fac #%s", inv.Number),
		Amount:      totalCost,
		Currency:    inv.Currency,
		Reference:   inv.Number,
	}
}

func findProduct(products []models.Product, id string) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
