package models

import "time"

const (
	InvoicePaid      = "Paid"
	InvoiceUnpaid    = "Unpaid"
	InvoiceOverdue   = "Overdue"
	InvoiceCancelled = "Cancelled"
)

// IsValidInvoiceStatus reports whether s is a known invoice status.
func IsValidInvoiceStatus(s string) bool {
	switch s {
	case InvoicePaid, InvoiceUnpaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// Invoice is the billing record written once a payment is confirmed, or by an admin.
type Invoice struct {
	ID                 string     `bson:"id" json:"id"`
	InvoiceNumber      string     `bson:"invoice_number" json:"invoiceNumber"`
	ClientID           string     `bson:"client_id" json:"clientId"`
	ApplicationID      string     `bson:"application_id,omitempty" json:"applicationId,omitempty"`
	OrderID            string     `bson:"order_id,omitempty" json:"orderId,omitempty"`
	PaymentID          string     `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	Amount             float64    `bson:"amount" json:"amount"`
	Currency           string     `bson:"currency" json:"currency"`
	Status             string     `bson:"status" json:"status"`
	ServiceDescription string     `bson:"service_description" json:"serviceDescription"`
	IssueDate          time.Time  `bson:"issue_date" json:"issueDate"`
	DueDate            time.Time  `bson:"due_date" json:"dueDate"`
	PaymentDate        *time.Time `bson:"payment_date,omitempty" json:"paymentDate,omitempty"`
	CreatedAt          time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `bson:"updated_at" json:"updatedAt"`
}
