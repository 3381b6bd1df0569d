package applicationRepo

import (
	"context"

	"visapoint/database"
	"visapoint/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ApplicationRepository defines data access for visa applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	// GetByOrderID finds the application currently bound to a payment order id.
	GetByOrderID(ctx context.Context, orderID string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// MarkPaid sets paid=true and attaches the gateway identifiers.
	MarkPaid(ctx context.Context, id string, ref models.PaymentRef) error
	SetOrderID(ctx context.Context, id, orderID string) error
	Delete(ctx context.Context, id string) error
}

type mongoApplicationRepo struct {
	coll *mongo.Collection
}

// NewMongoApplicationRepo returns an ApplicationRepository backed by the visa_applications collection.
func NewMongoApplicationRepo() ApplicationRepository {
	repo := &mongoApplicationRepo{
		coll: database.Database().Collection("visa_applications"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create indexes", zap.String("collection", "visa_applications"), zap.Error(err))
	}
	return repo
}
