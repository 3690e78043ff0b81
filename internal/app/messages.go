package app

import (
	"errors"
	"fmt"

	"github.com/epavlov/todolite/internal/apperr"
)

// User-facing texts for outcomes that do not originate from an error value.
const (
	msgCaptchaLoading    = "reCAPTCHA is loading..."
	msgCaptchaIncomplete = "Please complete the reCAPTCHA."
	msgCaptchaPassed     = "Verification passed."
	msgPasswordsMismatch = "Passwords do not match."
	msgPasswordRules     = "Password must be at least 8 characters long, contain at least one digit, and one special character."
	msgEnterEmail        = "Please enter your email address."
	msgSignupSuccess     = "Sign up successful! You can now log in."
	msgResetSent         = "Password reset email sent. Please check your inbox."
	msgBusy              = "Still working on the previous request..."
	msgSessionEnded      = "Your session has ended. Please log in again."
)

// MessageFor converts an error from any operation boundary into the single
// user-visible message string. The mapping is total: every taxonomy kind has
// a fixed text and anything unrecognized falls back to a generic one. It is
// shared by the email/password and Google sign-in flows.
func MessageFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return "Invalid credentials. Please try again."
	case errors.Is(err, apperr.ErrEmailInUse):
		return "Email already in use. Please try a different one."
	case errors.Is(err, apperr.ErrUserCancelled):
		return "The sign-in window was closed. Please try again to log in with Google."
	case errors.Is(err, apperr.ErrInvalidInput):
		return "Please check your input and try again."
	case errors.Is(err, apperr.ErrNotFound):
		return "That todo no longer exists."
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return fmt.Sprintf("Failed to sync your todos: %v", err)
	case errors.Is(err, apperr.ErrUpload):
		return fmt.Sprintf("Failed to upload the image: %v", err)
	case errors.Is(err, apperr.ErrProvider):
		return "An error occurred. Please try again."
	default:
		return "An error occurred. Please try again."
	}
}
