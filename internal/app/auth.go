package app

import (
	"context"
	"fmt"

	"github.com/epavlov/todolite/internal/password"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// gateBlocked applies the bot-check gate ahead of any credential
// submission: an unloaded widget and an unpassed challenge each yield their
// own message, and in both cases the identity provider is never called.
func (a *App) gateBlocked() (string, bool) {
	if !a.gate.Ready() {
		return msgCaptchaLoading, true
	}
	if !a.gate.IsVerified() {
		return msgCaptchaIncomplete, true
	}
	return "", false
}

// Login authenticates with email and password and, on success, navigates to
// the home screen with a fresh todo snapshot.
func (a *App) Login(ctx context.Context) error {
	a.clearMessage()

	if msg, blocked := a.gateBlocked(); blocked {
		a.setMessage(msg)
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	if !a.beginOp() {
		a.setMessage(msgBusy)
		return nil
	}
	defer a.endOp()
	defer a.gate.Reset()

	s, err := a.sessions.SignIn(ctx, email, pw)
	if err != nil {
		a.setMessage(MessageFor(err))
		return nil
	}

	if err := a.cache.SetEmail(ctx, s.Email); err != nil {
		a.logger.Warn(ctx, "could not cache email", "err", err)
	}

	a.navigate(StateAuthenticated, routeHome)
	a.refreshTodos(ctx, s.UID)
	fmt.Fprintf(a.out, "Welcome, %s\n", s.Email)
	return nil
}

// Signup creates a new account. Client-side validation (confirmation match,
// password strength) runs before the provider sees anything; on success the
// user stays on the auth screen and is asked to log in.
func (a *App) Signup(ctx context.Context) error {
	a.clearMessage()

	if msg, blocked := a.gateBlocked(); blocked {
		a.setMessage(msg)
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}

	if pw != confirm {
		a.setMessage(msgPasswordsMismatch)
		return nil
	}
	if !password.IsStrong(pw) {
		a.setMessage(msgPasswordRules)
		return nil
	}

	if !a.beginOp() {
		a.setMessage(msgBusy)
		return nil
	}
	defer a.endOp()
	defer a.gate.Reset()

	if _, err := a.sessions.SignUp(ctx, email, pw); err != nil {
		a.setMessage(MessageFor(err))
		return nil
	}

	a.setMessage(msgSignupSuccess)
	return nil
}

// Google runs the interactive Google sign-in flow. The bot-check gate does
// not apply here; the consent screen is its own challenge.
func (a *App) Google(ctx context.Context) error {
	a.clearMessage()

	if !a.beginOp() {
		a.setMessage(msgBusy)
		return nil
	}
	defer a.endOp()

	s, err := a.sessions.SignInWithGoogle(ctx)
	if err != nil {
		a.setMessage(MessageFor(err))
		return nil
	}

	if err := a.cache.SetEmail(ctx, s.Email); err != nil {
		a.logger.Warn(ctx, "could not cache email", "err", err)
	}

	a.navigate(StateAuthenticated, routeHome)
	a.refreshTodos(ctx, s.UID)
	fmt.Fprintf(a.out, "Welcome, %s\n", s.Email)
	return nil
}

// Reset requests a password-reset mail for the entered address.
func (a *App) Reset(ctx context.Context) error {
	a.clearMessage()

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if email == "" {
		a.setMessage(msgEnterEmail)
		return nil
	}

	if !a.beginOp() {
		a.setMessage(msgBusy)
		return nil
	}
	defer a.endOp()

	if err := a.sessions.SendPasswordReset(ctx, email); err != nil {
		a.setMessage(fmt.Sprintf("Error: %v", err))
		return nil
	}

	a.setMessage(msgResetSent)
	return nil
}

// Captcha collects a challenge token and verifies it with the widget's
// backend, arming the gate for the next login or signup.
func (a *App) Captcha(ctx context.Context) error {
	a.clearMessage()

	if !a.gate.Ready() {
		a.setMessage(msgCaptchaLoading)
		return nil
	}

	token, err := getSimpleText(a.reader, "Enter the reCAPTCHA response token", a.out)
	if err != nil {
		return err
	}

	if err := a.gate.Verify(ctx, token); err != nil {
		a.setMessage(msgCaptchaIncomplete)
		return nil
	}

	a.setMessage(msgCaptchaPassed)
	return nil
}
