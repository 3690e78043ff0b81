// Package apperr defines shared sentinel errors used across todolite
// components. Callers should use errors.Is to match these values.
package apperr

import "errors"

var (
	// Client-side validation errors, raised before any provider call.
	ErrInvalidInput = errors.New("invalid input")

	// Identity provider errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrUserCancelled      = errors.New("user cancelled")
	ErrProvider           = errors.New("provider error")

	// Todo store errors.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = errors.New("not found")

	// Object store errors.
	ErrUpload = errors.New("upload error")
)
