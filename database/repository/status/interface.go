package statusRepo

import (
	"context"

	"visapoint/database"
	"visapoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// StatusRepository stores application status history.
type StatusRepository interface {
	Append(ctx context.Context, entry *models.StatusEntry) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.StatusEntry, error)
	DeleteByApplication(ctx context.Context, applicationID string) error
}

type mongoStatusRepo struct {
	coll *mongo.Collection
}

// NewMongoStatusRepo returns a StatusRepository backed by the application_status collection.
func NewMongoStatusRepo() StatusRepository {
	repo := &mongoStatusRepo{
		coll: database.Database().Collection("application_status"),
	}
	ctx, cancel := newContext()
	defer cancel()
	if _, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "application_id", Value: 1}, {Key: "created_at", Value: 1}},
	}); err != nil {
		zap.L().Warn("failed to create indexes", zap.String("collection", "application_status"), zap.Error(err))
	}
	return repo
}
