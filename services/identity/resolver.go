package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"visapoint/utils"
)

// Resolver signs an applicant in, or creates the account when sign-in fails.
type Resolver struct {
	Provider Provider
}

func NewResolver(p Provider) *Resolver {
	return &Resolver{Provider: p}
}

// Resolve returns the applicant's user. Failure is one of
// ErrEmailExistsWrongPassword, ErrSignUpFailed or an infrastructure error.
func (r *Resolver) Resolve(ctx context.Context, in SignUpInput) (*Result, error) {
	u, err := r.Provider.SignIn(ctx, in.Email, in.Password)
	if err == nil {
		return &Result{Outcome: SignedIn, User: u}, nil
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		return nil, err
	}

	u, err = r.Provider.SignUp(ctx, in)
	switch {
	case err == nil:
		return &Result{Outcome: Created, User: u}, nil
	case errors.Is(err, ErrAlreadyRegistered):
		return nil, ErrEmailExistsWrongPassword
	case errors.Is(err, ErrWeakPassword):
		return nil, fmt.Errorf("%w: %v", ErrSignUpFailed, err)
	}
	utils.GetLogger().Error("Resolve: sign-up failed", zap.String("email", in.Email), zap.Error(err))
	return nil, fmt.Errorf("%w: %v", ErrSignUpFailed, err)
}
