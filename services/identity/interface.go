// Package identity signs applicants in or up, and checks staff credentials.
package identity

import (
	"context"

	"visapoint/models"
)

// Provider is an identity backend.
type Provider interface {
	// SignIn returns ErrInvalidCredentials for unknown emails and wrong
	// passwords alike.
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	// SignUp returns ErrAlreadyRegistered when the email is taken.
	SignUp(ctx context.Context, in SignUpInput) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// SignUpInput is the data needed to create an account.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Outcome tells how a Resolve call obtained its user.
type Outcome string

const (
	SignedIn Outcome = "signed_in"
	Created  Outcome = "created"
)

// Result is the tagged answer of Resolve.
type Result struct {
	Outcome Outcome
	User    *models.User
}
