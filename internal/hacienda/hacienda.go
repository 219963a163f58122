// Package hacienda simulates electronic-document acceptance by the tax
// authority. No real protocol is involved: documents are accepted
// immediately with generated keys, and cancellation marks them anulado.
package hacienda

import (
	"fmt"
	"time"
)

// Document status values, tracked on invoices independently of payment
// status.
const (
	StatusAceptado   = "aceptado"
	StatusRechazado  = "rechazado"
	StatusProcesando = "procesando"
	StatusError      = "error"
	StatusNoEnviado  = "no_enviado"
	StatusAnulado    = "anulado"
)

// Document is the simulated result of submitting an invoice.
type Document struct {
	Consecutive   string
	ElectronicKey string
	Status        string
}

// Emit simulates submission and immediate acceptance of an invoice issued
// at the given time. Consecutive and key are derived from the timestamp the
// same way across restarts, so they stay unique per millisecond.
func Emit(issuedAt time.Time) Document {
	millis := issuedAt.UnixMilli()
	suffix := fmt.Sprintf("%06d", millis%1000000)
	return Document{
		Consecutive:   "001000010100000" + suffix,
		ElectronicKey: fmt.Sprintf("506%d12345678", millis),
		Status:        StatusAceptado,
	}
}

// InvoiceNumber builds the human invoice number for an issue time.
func InvoiceNumber(issuedAt time.Time) string {
	return fmt.Sprintf("FAC-%06d", issuedAt.UnixMilli()%1000000)
}
