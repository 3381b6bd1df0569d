package serviceRepo

import (
	"context"

	"visapoint/database"
	"visapoint/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServiceRepository defines data access for the visa service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.VisaService) error
	Update(ctx context.Context, svc *models.VisaService) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.VisaService, error)
	GetBySlug(ctx context.Context, slug string) (*models.VisaService, error)
	// List returns services ordered by display order.
	List(ctx context.Context, activeOnly bool) ([]models.VisaService, error)
	SetActive(ctx context.Context, id string, active bool) error
	// UpdateOrder writes display_order = index for each id in ids.
	UpdateOrder(ctx context.Context, ids []string) error
}

type mongoServiceRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRepo returns a ServiceRepository backed by the visa_services collection.
func NewMongoServiceRepo() ServiceRepository {
	repo := &mongoServiceRepo{
		coll: database.Database().Collection("visa_services"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create indexes", zap.String("collection", "visa_services"), zap.Error(err))
	}
	return repo
}
