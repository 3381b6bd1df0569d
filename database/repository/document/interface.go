package documentRepo

import (
	"context"

	"visapoint/database"
	"visapoint/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentRepository stores files shared with clients.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.ClientDocument) error
	GetByID(ctx context.Context, id string) (*models.ClientDocument, error)
	ListByUser(ctx context.Context, userID string) ([]models.ClientDocument, error)
	ListByApplication(ctx context.Context, applicationID string) ([]models.ClientDocument, error)
	Delete(ctx context.Context, id string) error
}

type mongoDocumentRepo struct {
	coll *mongo.Collection
}

// NewMongoDocumentRepo returns a DocumentRepository backed by the client_documents collection.
func NewMongoDocumentRepo() DocumentRepository {
	return &mongoDocumentRepo{
		coll: database.Database().Collection("client_documents"),
	}
}
