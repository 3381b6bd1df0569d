// Package memory holds map-backed repositories for tests and single-process
// development runs (STORE=memory).
package memory

import (
	"visapoint/database/repository"
)

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	return &repository.Store{
		Applications: NewApplications(),
		Invoices:     NewInvoices(),
		Services:     NewServices(),
		Statuses:     NewStatuses(),
		Documents:    NewDocuments(),
		Users:        NewUsers(),
	}
}
