package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"visapoint/database"
	userRepo "visapoint/database/repository/user"
	"visapoint/models"
	"visapoint/utils"
)

const minPasswordLength = 6

// LocalProvider keeps accounts in the users collection with bcrypt hashes.
type LocalProvider struct {
	Repo userRepo.UserRepository
	// Cost defaults to bcrypt.DefaultCost.
	Cost int
}

func NewLocalProvider(repo userRepo.UserRepository) *LocalProvider {
	return &LocalProvider{Repo: repo, Cost: bcrypt.DefaultCost}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	u, err := p.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		utils.GetLogger().Error("SignIn: failed to fetch user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrSignUpFailed)
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := p.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		utils.GetLogger().Error("SignUp: failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         models.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	utils.GetLogger().Info("User registered", zap.String("userId", u.ID))
	return u, nil
}

func (p *LocalProvider) GetUser(ctx context.Context, id string) (*models.User, error) {
	return p.Repo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
