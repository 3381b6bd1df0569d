package userRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"visapoint/database"
	"visapoint/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", key, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", key, err)
	}
	return &user, nil
}

// GetByID returns the account with the given id.
func (r *mongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

// GetByEmail looks an account up by its normalized email.
func (r *mongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	return r.findOne(ctx, bson.M{"email": email}, email)
}

// Create inserts an account. A taken email surfaces as database.ErrDuplicate.
func (r *mongoUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Email, database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepo) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": user.ID}, bson.M{"$set": user})
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", user.ID, database.ErrNotFound)
	}
	return nil
}
