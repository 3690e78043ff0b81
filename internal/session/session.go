// Package session implements the client side of the identity provider
// integration: email/password sign-in and sign-up, Google sign-in through an
// interactive consent flow, password reset mail, sign-out, and a
// subscription surface that reports every change of the authenticated
// principal (including loss of the session detected asynchronously).
package session

import (
	"context"
	"time"
)

// Session identifies the signed-in principal as reported by the identity
// provider. It is created on successful sign-in and destroyed on sign-out
// or when the provider stops honoring the refresh token.
type Session struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Client defines authentication operations against the identity provider.
//
// Contract:
//   - SignIn / SignUp / SignInWithGoogle: establish (or create) a principal.
//     SignUp creates the account but does not switch the client into a
//     signed-in state; the caller prompts the user to log in afterwards.
//   - SendPasswordReset: request a reset mail; empty email fails with
//     apperr.ErrInvalidInput before any network call.
//   - SignOut: clears the local session unconditionally; a failed remote
//     revocation is reported as apperr.ErrProvider after the local state is
//     already gone.
//   - Current: the session as of the last provider interaction, nil when
//     signed out.
//   - Subscribe: registers fn to be invoked on every principal change
//     (nil means "signed out"); the returned function unsubscribes.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignInWithGoogle(ctx context.Context) (*Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
	Current() *Session
	Subscribe(fn func(*Session)) func()
	Close() error
}
