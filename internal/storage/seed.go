package storage

import (
	"context"
	"fmt"

	"github.com/facturacr/facturacr/internal/models"
)

// Seed inserts the demo catalog into an empty store. A store that already
// holds products or customers is left alone, so seeding is safe to run on
// every start.
func Seed(ctx context.Context, store Store) error {
	products, err := store.ListAll(ctx, CollectionProducts)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(products) == 0 {
		demo := []models.Product{
			{ID: "1", Name: "Laptop Pro X", Description: "Laptop de alto rendimiento", SKU: "LPX-001", Price: 650000, Cost: 450000, Currency: models.CurrencyCRC, Stock: 10, Category: "Electrónica"},
			{ID: "2", Name: "Monitor 27\"", Description: "Monitor 4K UHD", SKU: "MON-002", Price: 185000, Cost: 120000, Currency: models.CurrencyCRC, Stock: 25, Category: "Electrónica"},
			{ID: "3", Name: "Silla Ergonómica", Description: "Silla de oficina premium", SKU: "CHR-003", Price: 150, Cost: 90, Currency: models.CurrencyUSD, Stock: 5, Category: "Muebles"},
		}
		for _, p := range demo {
			if err := store.Upsert(ctx, CollectionProducts, p.ID, p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}
	}

	customers, err := store.ListAll(ctx, CollectionCustomers)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(customers) == 0 {
		demo := []models.Customer{
			{
				ID: "1", Name: "Juan Pérez", CommercialName: "Juan Pérez",
				Email: "juan@example.com", TaxID: "1-1111-1111",
				IdentificationType: "01 Cédula Física", TaxRegime: "Simplificado",
				Country: "Costa Rica", Province: "San José", Canton: "San José",
				District: "Pavas", ZipCode: "10109",
				Address: "De la Embajada Americana 200m Oeste", Phone: "8888-8888",
			},
			{
				ID: "2", Name: "Corporación ABC S.A.", CommercialName: "ABC Corp",
				Email: "facturacion@abccorp.com", TaxID: "3-101-654321",
				IdentificationType: "02 Cédula Jurídica", TaxRegime: "Tradicional",
				Country: "Costa Rica", Province: "Heredia", Canton: "Belén",
				District: "La Asunción", ZipCode: "40701",
				Address: "Centro Corporativo El Cafetal, Edificio A", Phone: "2299-9999",
			},
		}
		for _, c := range demo {
			if err := store.Upsert(ctx, CollectionCustomers, c.ID, c); err != nil {
				return fmt.Errorf("seed customer %s: %w", c.ID, err)
			}
		}
	}
	return nil
}
