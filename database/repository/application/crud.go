package applicationRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"visapoint/database"
	"visapoint/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var sortable = map[string]string{
	"":           "created_at",
	"createdAt":  "created_at",
	"totalPrice": "total_price",
	"name":       "name",
	"status":     "status",
	"travelDate": "travel_date",
}

// Create inserts a new application, assigning an id when missing.
func (r *mongoApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, app); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create application: %w", database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *mongoApplicationRepo) findOne(ctx context.Context, filter bson.M) (*models.Application, error) {
	var app models.Application
	if err := r.coll.FindOne(ctx, filter).Decode(&app); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// GetByID retrieves an application by id.
func (r *mongoApplicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	app, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application %s: %w", id, err)
	}
	return app, nil
}

// GetByOrderID retrieves the application bound to orderID.
func (r *mongoApplicationRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Application, error) {
	app, err := r.findOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application for order %s: %w", orderID, err)
	}
	return app, nil
}

func buildFilter(f models.ApplicationFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Paid != nil {
		filter["paid"] = *f.Paid
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Search != "" {
		rx := regexMatch(f.Search)
		filter["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"email": rx},
			bson.M{"reference_id": rx},
		}
	}
	return filter
}

func regexMatch(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}

// List returns applications matching the filter.
func (r *mongoApplicationRepo) List(ctx context.Context, f models.ApplicationFilter) ([]models.Application, error) {
	field, ok := sortable[f.SortBy]
	if !ok {
		field = "created_at"
	}
	dir := -1
	if f.Ascending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}

	cursor, err := r.coll.Find(ctx, buildFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := []models.Application{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return apps, nil
}

// ListByUser returns one client's applications, newest first.
func (r *mongoApplicationRepo) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	return r.List(ctx, models.ApplicationFilter{UserID: userID})
}

func (r *mongoApplicationRepo) update(ctx context.Context, id string, set bson.M) error {
	set["updated_at"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update application %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("application %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// UpdateStatus sets the status text of an application.
func (r *mongoApplicationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, id, bson.M{"status": status})
}

// MarkPaid flips the paid flag and stores the payment identifiers.
func (r *mongoApplicationRepo) MarkPaid(ctx context.Context, id string, ref models.PaymentRef) error {
	set := bson.M{"paid": true, "payment_id": ref.PaymentID}
	if ref.OrderID != "" {
		set["order_id"] = ref.OrderID
	}
	if ref.TransactionID != "" {
		set["transaction_id"] = ref.TransactionID
	}
	return r.update(ctx, id, set)
}

// SetOrderID binds a new payment attempt to the application.
func (r *mongoApplicationRepo) SetOrderID(ctx context.Context, id, orderID string) error {
	return r.update(ctx, id, bson.M{"order_id": orderID})
}

// Delete removes an application row.
func (r *mongoApplicationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete application %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("application %s: %w", id, database.ErrNotFound)
	}
	return nil
}
