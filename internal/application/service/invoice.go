package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvoiceNumberFunc produces a candidate invoice number for a sale created at t.
type InvoiceNumberFunc func(t time.Time) string

// NewInvoiceNumber returns e.g. INV-20261017-143501-9F2C1A: the sale time to
// the second plus six random hex digits to separate sales in the same second.
func NewInvoiceNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return "INV-" + t.Format("20060102-150405") + "-" + suffix
}
