package identity

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyRegistered  = errors.New("a user with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")

	// ErrEmailExistsWrongPassword means sign-in failed and sign-up found the
	// email already registered.
	ErrEmailExistsWrongPassword = errors.New("an account with this email exists but the password is incorrect")
	// ErrSignUpFailed means neither sign-in nor sign-up produced a user.
	ErrSignUpFailed = errors.New("could not create account")
)
