package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func shortCode(n int) string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return code[:n]
}

// NewReferenceID returns the applicant-facing reference, e.g. VP-261019-3FA2C1.
func NewReferenceID(now time.Time) string {
	return "VP-" + now.UTC().Format("060102") + "-" + shortCode(6)
}

// NewInvoiceNumber returns a human-readable invoice number, e.g. INV-20261019-7C01B9.
func NewInvoiceNumber(now time.Time) string {
	return "INV-" + now.UTC().Format("20060102") + "-" + shortCode(6)
}
