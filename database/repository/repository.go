package repository

import (
	applicationRepo "visapoint/database/repository/application"
	documentRepo "visapoint/database/repository/document"
	invoiceRepo "visapoint/database/repository/invoice"
	serviceRepo "visapoint/database/repository/service"
	statusRepo "visapoint/database/repository/status"
	userRepo "visapoint/database/repository/user"
)

// Re-export the repository interfaces.
type (
	ApplicationRepository = applicationRepo.ApplicationRepository
	InvoiceRepository     = invoiceRepo.InvoiceRepository
	ServiceRepository     = serviceRepo.ServiceRepository
	StatusRepository      = statusRepo.StatusRepository
	DocumentRepository    = documentRepo.DocumentRepository
	UserRepository        = userRepo.UserRepository
)

// Store groups every record collection the server uses.
type Store struct {
	Applications ApplicationRepository
	Invoices     InvoiceRepository
	Services     ServiceRepository
	Statuses     StatusRepository
	Documents    DocumentRepository
	Users        UserRepository
}

// NewMongoStore builds the Mongo-backed store. database.InitDB must run first.
func NewMongoStore() *Store {
	return &Store{
		Applications: applicationRepo.NewMongoApplicationRepo(),
		Invoices:     invoiceRepo.NewMongoInvoiceRepo(),
		Services:     serviceRepo.NewMongoServiceRepo(),
		Statuses:     statusRepo.NewMongoStatusRepo(),
		Documents:    documentRepo.NewMongoDocumentRepo(),
		Users:        userRepo.NewMongoUserRepo(),
	}
}
