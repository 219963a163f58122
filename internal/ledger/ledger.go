// Package ledger keeps invoices, product stock and derived cost-of-goods
// expenses mutually consistent. Each operation is exactly one atomic batch
// against the persistence gateway: there is no intermediate commit point,
// no internal retry, and a failed batch means nothing changed.
package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/facturacr/facturacr/internal/billing"
	"github.com/facturacr/facturacr/internal/hacienda"
	"github.com/facturacr/facturacr/internal/models"
	"github.com/facturacr/facturacr/internal/storage"
)

// Ledger is the transaction manager for the invoice lifecycle.
//
// It trusts that the item list it receives was validated at item-add time
// (stock sufficiency per non-service item) and does not re-check at commit
// time. Likewise CancelInvoice is not idempotent: calling it twice restores
// stock twice. Guarding against re-invocation on an already-cancelled
// invoice is the caller's job.
type Ledger struct {
	store storage.Store
	log   zerolog.Logger
}

// New creates a Ledger over a persistence gateway.
func New(store storage.Store, log zerolog.Logger) *Ledger {
	return &Ledger{store: store, log: log}
}

// StockChange is the absolute stock value written for a product during
// invoice creation.
type StockChange struct {
	ProductID string `json:"productId"`
	NewStock  int    `json:"newStock"`
}

// CreateResult reports what a successful CreateInvoice committed. Callers
// update any in-memory state from this result only after the call returns
// without error; on error nothing was persisted.
type CreateResult struct {
	Invoice models.Invoice  `json:"invoice"`
	Expense *models.Expense `json:"expense,omitempty"`
	Stock   []StockChange   `json:"stock"`
}

// CreateInvoice persists an invoice, decrements stock for its non-service
// items and records the derived cost-of-goods expense, all in one batch.
//
// New stock values are computed client-side from the caller's product
// snapshot and written as absolute values. Two concurrent sales of the same
// product computed from the same stale snapshot can therefore overwrite
// each other's decrement; the restore path on cancellation uses additive
// increments and is not affected.
func (l *Ledger) CreateInvoice(ctx context.Context, inv models.Invoice, products []models.Product) (*CreateResult, error) {
	// Aggregate sold quantities per product. Service items never touch
	// stock, whatever product they reference.
	sold := make(map[string]int)
	for _, it := range inv.Items {
		if it.Service || it.ProductID == "" {
			continue
		}
		sold[it.ProductID] += it.Quantity
	}

	var changes []StockChange
	for _, p := range products {
		qty, ok := sold[p.ID]
		if !ok {
			continue
		}
		changes = append(changes, StockChange{ProductID: p.ID, NewStock: p.Stock - qty})
	}

	expense := billing.DeriveExpense(inv, products)

	ops := make([]storage.BatchOp, 0, len(changes)+2)
	ops = append(ops, storage.SetOp(storage.CollectionInvoices, inv.ID, inv))
	for _, c := range changes {
		ops = append(ops, storage.UpdateOp(storage.CollectionProducts, c.ProductID, map[string]any{
			"stock": c.NewStock,
		}))
	}
	if expense != nil {
		ops = append(ops, storage.SetOp(storage.CollectionExpenses, expense.ID, expense))
	}

	if err := l.store.RunBatch(ctx, ops); err != nil {
		return nil, fmt.Errorf("create invoice %s: %w", inv.Number, err)
	}

	l.log.Info().
		Str("invoice", inv.Number).
		Int("items", len(inv.Items)).
		Int("stock_updates", len(changes)).
		Bool("cogs_expense", expense != nil).
		Msg("invoice created")

	return &CreateResult{Invoice: inv, Expense: expense, Stock: changes}, nil
}

// CancelInvoice marks an invoice cancelled and restores stock for its
// non-service items, all in one batch. Stock restoration uses atomic
// additive increments and creates the product document when it no longer
// exists, so cancellation survives product deletion.
//
// The cost-of-goods expense recorded at creation time is deliberately left
// in place: cancellation reverses stock, not the expense ledger.
func (l *Ledger) CancelInvoice(ctx context.Context, invoiceID string, items []models.InvoiceItem) error {
	ops := []storage.BatchOp{
		storage.UpdateOp(storage.CollectionInvoices, invoiceID, map[string]any{
			"status":         string(models.InvoiceStatusCancelled),
			"haciendaStatus": hacienda.StatusAnulado,
		}),
	}
	for _, it := range items {
		if it.Service || it.ProductID == "" {
			continue
		}
		ops = append(ops, storage.IncrementOp(storage.CollectionProducts, it.ProductID, "stock", it.Quantity))
	}

	if err := l.store.RunBatch(ctx, ops); err != nil {
		return fmt.Errorf("cancel invoice %s: %w", invoiceID, err)
	}

	l.log.Info().Str("invoice_id", invoiceID).Int("items", len(items)).Msg("invoice cancelled")
	return nil
}
