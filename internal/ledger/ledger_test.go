package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/facturacr/facturacr/internal/models"
	"github.com/facturacr/facturacr/internal/storage"
)

func floatPtr(v float64) *float64 { return &v }

func setupLedger(t *testing.T) (*Ledger, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return New(store, zerolog.Nop()), store
}

func productStock(t *testing.T, store storage.Store, id string) int {
	t.Helper()
	doc, err := store.GetOne(context.Background(), storage.CollectionProducts, id)
	if err != nil {
		t.Fatalf("get product %s: %v", id, err)
	}
	p, err := storage.Decode[models.Product](doc)
	if err != nil {
		t.Fatalf("decode product %s: %v", id, err)
	}
	return p.Stock
}

func seedProduct(t *testing.T, store storage.Store, p models.Product) {
	t.Helper()
	if err := store.Upsert(context.Background(), storage.CollectionProducts, p.ID, p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func TestCreateInvoiceDecrementsStockAndRecordsExpense(t *testing.T) {
	ctx := context.Background()
	l, store := setupLedger(t)

	p := models.Product{ID: "p1", Name: "Laptop", Price: 1000, Cost: 600, Currency: "CRC", Stock: 10}
	seedProduct(t, store, p)

	inv := models.Invoice{
		ID: "i1", Number: "FAC-100", Date: "2026-08-28", Currency: "CRC",
		Status: models.InvoiceStatusPaid,
		Items: []models.InvoiceItem{
			{ProductID: "p1", ProductName: "Laptop", Quantity: 3, Price: 1000, Cost: floatPtr(600), Total: 3000},
		},
		Subtotal: 3000, Tax: 390, Total: 3390,
	}

	res, err := l.CreateInvoice(ctx, inv, []models.Product{p})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := productStock(t, store, "p1"); got != 7 {
		t.Errorf("stock = %d, want 7", got)
	}
	if _, err := store.GetOne(ctx, storage.CollectionInvoices, "i1"); err != nil {
		t.Errorf("invoice not persisted: %v", err)
	}
	if res.Expense == nil {
		t.Fatal("expected a derived expense")
	}
	if res.Expense.Amount != 1800 {
		t.Errorf("expense amount = %v, want 1800", res.Expense.Amount)
	}
	doc, err := store.GetOne(ctx, storage.CollectionExpenses, res.Expense.ID)
	if err != nil {
		t.Fatalf("expense not persisted: %v", err)
	}
	exp, _ := storage.Decode[models.Expense](doc)
	if exp.Reference != "FAC-100" || exp.Category != models.ExpenseCategoryCOGS {
		t.Errorf("unexpected expense %+v", exp)
	}
	if len(res.Stock) != 1 || res.Stock[0].NewStock != 7 {
		t.Errorf("unexpected stock changes %+v", res.Stock)
	}
}

func TestCreateInvoiceServiceItemsNeverTouchStock(t *testing.T) {
	ctx := context.Background()
	l, store := setupLedger(t)

	p := models.Product{ID: "p1", Name: "Soporte Técnico", Price: 80, Currency: "CRC", Stock: 2}
	seedProduct(t, store, p)

	inv := models.Invoice{
		ID: "i1", Number: "FAC-101", Currency: "CRC", Status: models.InvoiceStatusPaid,
		Items: []models.InvoiceItem{
			// Quantity far above available stock: services are exempt.
			{ProductID: "p1", Quantity: 50, Price: 80, Cost: floatPtr(0), Service: true, Total: 4000},
		},
	}

	res, err := l.CreateInvoice(ctx, inv, []models.Product{p})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := productStock(t, store, "p1"); got != 2 {
		t.Errorf("stock = %d, want 2 (unchanged)", got)
	}
	if len(res.Stock) != 0 {
		t.Errorf("expected no stock changes, got %+v", res.Stock)
	}
	if res.Expense != nil {
		t.Errorf("zero-cost service invoice produced expense %+v", res.Expense)
	}
}

func TestCreateInvoiceNoExpenseWhenAllCostsZero(t *testing.T) {
	ctx := context.Background()
	l, store := setupLedger(t)

	p := models.Product{ID: "p1", Name: "Pegatina", Price: 5, Currency: "CRC", Stock: 100}
	seedProduct(t, store, p)

	inv := models.Invoice{
		ID: "i1", Number: "FAC-102", Currency: "CRC", Status: models.InvoiceStatusPaid,
		Items: []models.InvoiceItem{
			{ProductID: "p1", Quantity: 10, Price: 5, Cost: floatPtr(0), Total: 50},
		},
	}

	res, err := l.CreateInvoice(ctx, inv, []models.Product{p})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Expense != nil {
		t.Errorf("expected no expense, got %+v", res.Expense)
	}
	docs, _ := store.ListAll(ctx, storage.CollectionExpenses)
	if len(docs) != 0 {
		t.Errorf("expense collection not empty: %d docs", len(docs))
	}
}

func TestCancelInvoiceRestoresStockAndStatus(t *testing.T) {
	ctx := context.Background()
	l, store := setupLedger(t)

	p := models.Product{ID: "p1", Name: "Monitor", Price: 200, Cost: 120, Currency: "CRC", Stock: 10}
	seedProduct(t, store, p)

	inv := models.Invoice{
		ID: "i1", Number: "FAC-103", Currency: "CRC", Status: models.InvoiceStatusPaid,
		HaciendaStatus: "aceptado",
		Items: []models.InvoiceItem{
			{ProductID: "p1", Quantity: 3, Price: 200, Cost: floatPtr(120), Total: 600},
		},
	}
	if _, err := l.CreateInvoice(ctx, inv, []models.Product{p}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := productStock(t, store, "p1"); got != 7 {
		t.Fatalf("stock after create = %d, want 7", got)
	}

	if err := l.CancelInvoice(ctx, inv.ID, inv.Items); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := productStock(t, store, "p1"); got != 10 {
		t.Errorf("stock after cancel = %d, want 10", got)
	}
	doc, _ := store.GetOne(ctx, storage.CollectionInvoices, "i1")
	got, _ := storage.Decode[models.Invoice](doc)
	if got.Status != models.InvoiceStatusCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}
	if got.HaciendaStatus != "anulado" {
		t.Errorf("haciendaStatus = %q, want anulado", got.HaciendaStatus)
	}

	// The cost-of-goods expense is intentionally NOT reversed.
	expenses, _ := store.ListAll(ctx, storage.CollectionExpenses)
	if len(expenses) != 1 {
		t.Errorf("expected COGS expense to survive cancellation, got %d expenses", len(expenses))
	}
}

func TestCancelInvoiceIsNotIdempotent(t *testing.T) {
	// Calling CancelInvoice twice double-restores stock. That is the
	// documented contract: preventing re-invocation is the caller's job,
	// so this test asserts the double restore rather than "fixing" it.
	ctx := context.Background()
	l, store := setupLedger(t)

	seedProduct(t, store, models.Product{ID: "p1", Name: "Teclado", Currency: "CRC", Stock: 7})

	items := []models.InvoiceItem{{ProductID: "p1", Quantity: 3}}
	if err := store.Upsert(ctx, storage.CollectionInvoices, "i1", models.Invoice{ID: "i1", Status: models.InvoiceStatusPaid, Items: items}); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	if err := l.CancelInvoice(ctx, "i1", items); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if got := productStock(t, store, "p1"); got != 10 {
		t.Fatalf("stock after first cancel = %d, want 10", got)
	}

	if err := l.CancelInvoice(ctx, "i1", items); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if got := productStock(t, store, "p1"); got != 13 {
		t.Errorf("stock after second cancel = %d, want 13", got)
	}
}

func TestCancelInvoiceSurvivesDeletedProduct(t *testing.T) {
	ctx := context.Background()
	l, store := setupLedger(t)

	items := []models.InvoiceItem{{ProductID: "gone", Quantity: 4}}
	if err := store.Upsert(ctx, storage.CollectionInvoices, "i1", models.Invoice{ID: "i1", Status: models.InvoiceStatusPaid, Items: items}); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	if err := l.CancelInvoice(ctx, "i1", items); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := productStock(t, store, "gone"); got != 4 {
		t.Errorf("stock = %d, want 4 (created on restore)", got)
	}
}

// failingStore rejects every batch, simulating an unreachable gateway.
type failingStore struct {
	storage.Store
}

var errGatewayDown = errors.New("gateway unreachable")

func (f *failingStore) RunBatch(context.Context, []storage.BatchOp) error {
	return errGatewayDown
}

func TestCreateInvoicePropagatesGatewayFailure(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore()
	l := New(&failingStore{inner}, zerolog.Nop())

	p := models.Product{ID: "p1", Stock: 10, Currency: "CRC"}
	seedProduct(t, inner, p)

	inv := models.Invoice{
		ID: "i1", Number: "FAC-104", Currency: "CRC",
		Items: []models.InvoiceItem{{ProductID: "p1", Quantity: 3}},
	}
	res, err := l.CreateInvoice(ctx, inv, []models.Product{p})
	if !errors.Is(err, errGatewayDown) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result on failure, got %+v", res)
	}
	// Nothing committed: stock untouched, invoice absent.
	if got := productStock(t, inner, "p1"); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
	if _, err := inner.GetOne(ctx, storage.CollectionInvoices, "i1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("invoice unexpectedly persisted")
	}
}

func TestCancelInvoicePropagatesGatewayFailure(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore()
	l := New(&failingStore{inner}, zerolog.Nop())

	seedProduct(t, inner, models.Product{ID: "p1", Stock: 7, Currency: "CRC"})
	if err := inner.Upsert(ctx, storage.CollectionInvoices, "i1", models.Invoice{ID: "i1", Status: models.InvoiceStatusPaid}); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	err := l.CancelInvoice(ctx, "i1", []models.InvoiceItem{{ProductID: "p1", Quantity: 3}})
	if !errors.Is(err, errGatewayDown) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	doc, _ := inner.GetOne(ctx, storage.CollectionInvoices, "i1")
	got, _ := storage.Decode[models.Invoice](doc)
	if got.Status != models.InvoiceStatusPaid {
		t.Errorf("status changed despite failed commit: %q", got.Status)
	}
	if got := productStock(t, inner, "p1"); got != 7 {
		t.Errorf("stock changed despite failed commit: %d", got)
	}
}

func TestConcurrentCreatesFromStaleSnapshotLoseDecrements(t *testing.T) {
	// Stock decrements are written as absolute values computed from the
	// caller's in-memory snapshot. Two sales built from the same snapshot
	// therefore overwrite each other: a known weakness of the absolute
	// write path, asserted here so the behavior stays visible. The additive
	// restore on cancellation does not share it.
	ctx := context.Background()
	l, store := setupLedger(t)

	p := models.Product{ID: "p1", Name: "Laptop", Currency: "CRC", Stock: 10}
	seedProduct(t, store, p)
	stale := []models.Product{p}

	invA := models.Invoice{ID: "a", Number: "FAC-200", Currency: "CRC", Items: []models.InvoiceItem{{ProductID: "p1", Quantity: 3}}}
	invB := models.Invoice{ID: "b", Number: "FAC-201", Currency: "CRC", Items: []models.InvoiceItem{{ProductID: "p1", Quantity: 4}}}

	if _, err := l.CreateInvoice(ctx, invA, stale); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := l.CreateInvoice(ctx, invB, stale); err != nil {
		t.Fatalf("create b: %v", err)
	}

	// 10-3-4 would be 3; the stale second write leaves 6.
	if got := productStock(t, store, "p1"); got != 6 {
		t.Errorf("stock = %d, want 6 (second absolute write wins)", got)
	}
}
