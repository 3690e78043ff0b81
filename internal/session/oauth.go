package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/epavlov/todolite/internal/apperr"
	"github.com/epavlov/todolite/internal/config"
)

// googleEndpoint is Google's OAuth2 authorization endpoint pair.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// googleConsent drives the interactive Google consent flow: it opens the
// authorization URL in the user's browser, receives the authorization code
// on a loopback listener, and exchanges it for an ID token.
type googleConsent struct {
	oauth      *oauth2.Config
	listenAddr string

	// openURL is a seam for tests and headless environments; the default
	// prints the URL for the user to open manually.
	openURL func(url string) error
}

func newGoogleConsent(cfg *config.Config) *googleConsent {
	return &googleConsent{
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Endpoint:     googleEndpoint,
			RedirectURL:  fmt.Sprintf("http://%s/callback", cfg.OAuthListenAddr),
			Scopes:       []string{"openid", "email"},
		},
		listenAddr: cfg.OAuthListenAddr,
		openURL: func(url string) error {
			fmt.Printf("Open the following URL in your browser to sign in with Google:\n%s\n", url)
			return nil
		},
	}
}

// callbackResult carries the outcome of the loopback redirect.
type callbackResult struct {
	code string
	err  error
}

// Obtain runs the consent flow and returns the Google ID token.
// A dismissed or denied consent screen, or a cancelled context, surfaces
// as apperr.ErrUserCancelled.
func (g *googleConsent) Obtain(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", g.listenAddr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			fmt.Fprintln(w, "Sign-in was cancelled. You can close this window.")
			results <- callbackResult{err: apperr.ErrUserCancelled}
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("%w: state mismatch", apperr.ErrProvider)}
		default:
			fmt.Fprintln(w, "Signed in. You can close this window.")
			results <- callbackResult{code: q.Get("code")}
		}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := g.openURL(g.oauth.AuthCodeURL(state)); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return "", apperr.ErrUserCancelled
	}
	if res.err != nil {
		return "", res.err
	}

	tok, err := g.oauth.Exchange(ctx, res.code)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", apperr.ErrUserCancelled
		}
		return "", fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}

	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", fmt.Errorf("%w: no id_token in exchange response", apperr.ErrProvider)
	}
	return idToken, nil
}
