package invoiceRepo

import (
	"context"

	"visapoint/database"
	"visapoint/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InvoiceRepository defines data access for client invoices.
type InvoiceRepository interface {
	// Create inserts an invoice. A second invoice for the same order id fails
	// with database.ErrDuplicate.
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Invoice, error)
	List(ctx context.Context, status string) ([]models.Invoice, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Update(ctx context.Context, inv *models.Invoice) error
	Delete(ctx context.Context, id string) error
}

type mongoInvoiceRepo struct {
	coll *mongo.Collection
}

// NewMongoInvoiceRepo returns an InvoiceRepository backed by the client_invoices collection.
func NewMongoInvoiceRepo() InvoiceRepository {
	repo := &mongoInvoiceRepo{
		coll: database.Database().Collection("client_invoices"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create indexes", zap.String("collection", "client_invoices"), zap.Error(err))
	}
	return repo
}
