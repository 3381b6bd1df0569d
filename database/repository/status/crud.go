package statusRepo

import (
	"context"
	"fmt"
	"time"

	"visapoint/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Append records one status change.
func (r *mongoStatusRepo) Append(ctx context.Context, entry *models.StatusEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to record status for application %s: %w", entry.ApplicationID, err)
	}
	return nil
}

// ListByApplication returns the history of one application, oldest first.
func (r *mongoStatusRepo) ListByApplication(ctx context.Context, applicationID string) ([]models.StatusEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"application_id": applicationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.StatusEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode status history: %w", err)
	}
	return entries, nil
}

// DeleteByApplication removes the whole history of one application.
func (r *mongoStatusRepo) DeleteByApplication(ctx context.Context, applicationID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"application_id": applicationID}); err != nil {
		return fmt.Errorf("failed to delete status history for %s: %w", applicationID, err)
	}
	return nil
}
