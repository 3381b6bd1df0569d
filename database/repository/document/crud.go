package documentRepo

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

// Create inserts a client document record.
func (r *mongoDocumentRepo) Create(ctx context.Context, doc *models.ClientDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID returns a document by id.
func (r *mongoDocumentRepo) GetByID(ctx context.Context, id string) (*models.ClientDocument, error) {
	var doc models.ClientDocument
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("document %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *mongoDocumentRepo) find(ctx context.Context, filter bson.M) ([]models.ClientDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.ClientDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// ListByUser returns documents shared with one client.
func (r *mongoDocumentRepo) ListByUser(ctx context.Context, userID string) ([]models.ClientDocument, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// ListByApplication returns documents linked to one application.
func (r *mongoDocumentRepo) ListByApplication(ctx context.Context, applicationID string) ([]models.ClientDocument, error) {
	return r.find(ctx, bson.M{"application_id": applicationID})
}

// Delete removes a document record.
func (r *mongoDocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("document %s: %w", id, database.ErrNotFound)
	}
	return nil
}
