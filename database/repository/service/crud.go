package serviceRepo

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

// Create inserts a new visa service.
func (r *mongoServiceRepo) Create(ctx context.Context, svc *models.VisaService) error {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, svc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create service %q: %w", svc.Slug, database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// Update replaces a service document, keeping its creation time.
func (r *mongoServiceRepo) Update(ctx context.Context, svc *models.VisaService) error {
	svc.UpdatedAt = time.Now()
	update := bson.M{"$set": svc}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": svc.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to update service %s: %w", svc.ID, database.ErrDuplicate)
		}
		return fmt.Errorf("failed to update service %s: %w", svc.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("service %s: %w", svc.ID, database.ErrNotFound)
	}
	return nil
}

// Delete removes a service.
func (r *mongoServiceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete service %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *mongoServiceRepo) findOne(ctx context.Context, filter bson.M) (*models.VisaService, error) {
	var svc models.VisaService
	if err := r.coll.FindOne(ctx, filter).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// GetByID retrieves a service by id.
func (r *mongoServiceRepo) GetByID(ctx context.Context, id string) (*models.VisaService, error) {
	svc, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return svc, nil
}

// GetBySlug retrieves a service by its slug.
func (r *mongoServiceRepo) GetBySlug(ctx context.Context, slug string) (*models.VisaService, error) {
	svc, err := r.findOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service %q: %w", slug, err)
	}
	return svc, nil
}

// List returns services ordered by display order.
func (r *mongoServiceRepo) List(ctx context.Context, activeOnly bool) ([]models.VisaService, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}, {Key: "title", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []models.VisaService{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

// SetActive toggles whether the service is offered publicly.
func (r *mongoServiceRepo) SetActive(ctx context.Context, id string, active bool) error {
	update := bson.M{"$set": bson.M{"active": active, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update service %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// UpdateOrder persists the display order in a single bulk write.
func (r *mongoServiceRepo) UpdateOrder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": id}).
			SetUpdate(bson.M{"$set": bson.M{"display_order": i, "updated_at": now}}))
	}
	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to reorder services: %w", err)
	}
	return nil
}
