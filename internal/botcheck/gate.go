// Package botcheck wraps the third-party human-verification widget behind a
// boolean gate checked before any credential submission.
package botcheck

import "context"

// Gate is the verification gate consumed by the view controller.
//
// The widget loads asynchronously: Ready reports whether it is usable at
// all, IsVerified whether the current challenge has been passed. Submission
// attempted before readiness must surface a distinct "loading" message, and
// before verification a distinct "please complete" message, instead of
// calling the identity provider.
type Gate interface {
	// Ready reports whether the widget has finished loading.
	Ready() bool

	// IsVerified reports whether the current challenge token was accepted.
	IsVerified() bool

	// Verify submits a challenge token for server-side verification and,
	// on acceptance, flips the gate to verified.
	Verify(ctx context.Context, token string) error

	// Reset discards the verified state; the next submission requires a
	// fresh challenge.
	Reset()
}
