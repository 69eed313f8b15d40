package services

import "errors"

var (
	ErrNotFound            = errors.New("user not found")
	ErrEmailTaken          = errors.New("email address is already in use")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidResetRequest = errors.New("invalid password reset request")
	ErrNoAccountForReset   = errors.New("no account registered for this email")
	// ErrInitialiseForbidden guards the destructive schema reset.
	ErrInitialiseForbidden = errors.New("initialise is not allowed in production")
)
