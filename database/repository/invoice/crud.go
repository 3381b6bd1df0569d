package invoiceRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visapoint/database"
	"visapoint/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new invoice.
func (r *mongoInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create invoice: %w", database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *mongoInvoiceRepo) findOne(ctx context.Context, filter bson.M) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.coll.FindOne(ctx, filter).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// GetByID retrieves an invoice by id.
func (r *mongoInvoiceRepo) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", id, err)
	}
	return inv, nil
}

// GetByOrderID retrieves the invoice written for a payment order.
func (r *mongoInvoiceRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	inv, err := r.findOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice for order %s: %w", orderID, err)
	}
	return inv, nil
}

func (r *mongoInvoiceRepo) find(ctx context.Context, filter bson.M) ([]models.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issue_date", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

// List returns all invoices, optionally narrowed to one status.
func (r *mongoInvoiceRepo) List(ctx context.Context, status string) ([]models.Invoice, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

// ListByClient returns one client's invoices.
func (r *mongoInvoiceRepo) ListByClient(ctx context.Context, clientID string) ([]models.Invoice, error) {
	return r.find(ctx, bson.M{"client_id": clientID})
}

// UpdateStatus changes an invoice status. Moving to Paid stamps the payment date.
func (r *mongoInvoiceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	now := time.Now()
	set := bson.M{"status": status, "updated_at": now}
	if status == models.InvoicePaid {
		set["payment_date"] = now
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// Update replaces the editable fields of an invoice.
func (r *mongoInvoiceRepo) Update(ctx context.Context, inv *models.Invoice) error {
	inv.UpdatedAt = time.Now()
	set := bson.M{
		"invoice_number":      inv.InvoiceNumber,
		"client_id":           inv.ClientID,
		"application_id":      inv.ApplicationID,
		"amount":              inv.Amount,
		"currency":            inv.Currency,
		"status":              inv.Status,
		"service_description": inv.ServiceDescription,
		"issue_date":          inv.IssueDate,
		"due_date":            inv.DueDate,
		"payment_date":        inv.PaymentDate,
		"updated_at":          inv.UpdatedAt,
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": inv.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", inv.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("invoice %s: %w", inv.ID, database.ErrNotFound)
	}
	return nil
}

// Delete removes an invoice.
func (r *mongoInvoiceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	return nil
}
