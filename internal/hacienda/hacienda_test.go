package hacienda

import (
	"strings"
	"testing"
	"time"
)

func TestEmit(t *testing.T) {
	issued := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	doc := Emit(issued)

	if doc.Status != StatusAceptado {
		t.Errorf("status = %q, want %q", doc.Status, StatusAceptado)
	}
	if !strings.HasPrefix(doc.Consecutive, "001000010100000") {
		t.Errorf("consecutive = %q", doc.Consecutive)
	}
	if len(doc.Consecutive) != 21 {
		t.Errorf("consecutive length = %d, want 21", len(doc.Consecutive))
	}
	if !strings.HasPrefix(doc.ElectronicKey, "506") {
		t.Errorf("electronic key = %q", doc.ElectronicKey)
	}
}

func TestEmitIsDeterministicPerInstant(t *testing.T) {
	issued := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	if Emit(issued) != Emit(issued) {
		t.Error("same instant produced different documents")
	}
	later := issued.Add(time.Millisecond)
	if Emit(issued) == Emit(later) {
		t.Error("different instants produced identical documents")
	}
}

func TestInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	n := InvoiceNumber(issued)
	if !strings.HasPrefix(n, "FAC-") || len(n) != 10 {
		t.Errorf("invoice number = %q", n)
	}
}
