package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/epavlov/todolite/internal/apperr"
	"github.com/epavlov/todolite/internal/config"
	"github.com/epavlov/todolite/internal/logging"
)

// consentFlow obtains a provider credential (a Google ID token) through an
// interactive consent step. Implemented by googleConsent; tests substitute
// a stub.
type consentFlow interface {
	Obtain(ctx context.Context) (string, error)
}

// RESTClient talks to the hosted identity provider over its REST surface.
// One instance is constructed at process start and injected into the view
// controller as a session.Client.
type RESTClient struct {
	apiKey        string
	authEndpoint  string
	tokenEndpoint string
	http          *http.Client
	consent       consentFlow
	logger        logging.Logger

	mu      sync.Mutex
	current *Session
	subs    map[string]func(*Session)
}

// NewRESTClient constructs a RESTClient from configuration. The Google
// consent flow listens on cfg.OAuthListenAddr during SignInWithGoogle.
func NewRESTClient(cfg *config.Config, logger logging.Logger) *RESTClient {
	return &RESTClient{
		apiKey:        cfg.APIKey,
		authEndpoint:  strings.TrimRight(cfg.AuthEndpoint, "/"),
		tokenEndpoint: strings.TrimRight(cfg.TokenEndpoint, "/"),
		http:          &http.Client{Timeout: 15 * time.Second},
		consent:       newGoogleConsent(cfg),
		logger:        logger.With("component", "session"),
		subs:          make(map[string]func(*Session)),
	}
}

// providerError is the error envelope returned by the identity provider.
type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// authResponse covers the fields shared by the signInWithPassword, signUp,
// and signInWithIdp responses.
type authResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (c *RESTClient) post(ctx context.Context, action string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}

	url := fmt.Sprintf("%s/accounts:%s?key=%s", c.authEndpoint, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		var pe providerError
		if err := json.Unmarshal(data, &pe); err == nil && pe.Error.Message != "" {
			return mapProviderCode(pe.Error.Message)
		}
		return fmt.Errorf("%w: unexpected status %s", apperr.ErrProvider, resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
		}
	}
	return nil
}

// mapProviderCode converts a provider error code into the shared taxonomy.
// Codes may carry a trailing explanation, e.g. "INVALID_PASSWORD : ...".
func mapProviderCode(code string) error {
	head := strings.TrimSpace(strings.SplitN(code, ":", 2)[0])
	switch head {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return apperr.ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return apperr.ErrEmailInUse
	default:
		return fmt.Errorf("%w: %s", apperr.ErrProvider, code)
	}
}

func (c *RESTClient) sessionFromResponse(r *authResponse) (*Session, error) {
	s := &Session{
		UID:          r.LocalID,
		Email:        r.Email,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
	}

	if secs, err := strconv.Atoi(r.ExpiresIn); err == nil && secs > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}

	// The provider omits localId/email on some federated responses; the
	// ID token carries both.
	claims, err := claimsFromIDToken(r.IDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	if s.UID == "" {
		s.UID = claims.UID
	}
	if s.Email == "" {
		s.Email = claims.Email
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = claims.ExpiresAt
	}
	return s, nil
}

// SignIn authenticates with email and password. Unknown users and wrong
// passwords surface as apperr.ErrInvalidCredentials; everything else from
// the provider becomes apperr.ErrProvider with the message preserved.
func (c *RESTClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp authResponse
	err := c.post(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	s, err := c.sessionFromResponse(&resp)
	if err != nil {
		return nil, err
	}
	c.setSession(s)
	c.logger.Info(ctx, "signed in", "uid", s.UID)
	return s, nil
}

// SignUp creates a new account. The provider establishes a session for the
// fresh account, but the client deliberately stays signed out: the returned
// Session is informational and the user is asked to log in explicitly.
func (c *RESTClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp authResponse
	err := c.post(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	s, err := c.sessionFromResponse(&resp)
	if err != nil {
		return nil, err
	}
	c.logger.Info(ctx, "account created", "uid", s.UID)
	return s, nil
}

// SignInWithGoogle runs the interactive consent flow and exchanges the
// resulting Google credential for a provider session. A dismissed consent
// screen surfaces as apperr.ErrUserCancelled.
func (c *RESTClient) SignInWithGoogle(ctx context.Context) (*Session, error) {
	idToken, err := c.consent.Obtain(ctx)
	if err != nil {
		return nil, err
	}

	var resp authResponse
	err = c.post(ctx, "signInWithIdp", map[string]any{
		"postBody":            fmt.Sprintf("id_token=%s&providerId=google.com", idToken),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	s, err := c.sessionFromResponse(&resp)
	if err != nil {
		return nil, err
	}
	c.setSession(s)
	c.logger.Info(ctx, "signed in with google", "uid", s.UID)
	return s, nil
}

// SendPasswordReset asks the provider to send a reset mail. The email is
// validated before any network call.
func (c *RESTClient) SendPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.ErrInvalidInput
	}
	return c.post(ctx, "sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// SignOut clears the local session and notifies subscribers first, then
// makes a best-effort attempt to revoke the refresh token remotely. The
// local transition always happens; a failed revocation is reported as
// apperr.ErrProvider.
func (c *RESTClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	c.setSession(nil)

	if s == nil || s.RefreshToken == "" {
		return nil
	}
	if err := c.post(ctx, "revokeToken", map[string]any{
		"token": s.RefreshToken,
	}, nil); err != nil {
		c.logger.Warn(ctx, "remote sign-out failed, local session cleared anyway", "err", err)
		return fmt.Errorf("%w: remote sign-out failed", apperr.ErrProvider)
	}
	return nil
}

// Current returns the session as of the last provider interaction,
// or nil when signed out.
func (c *RESTClient) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers fn to be invoked on every principal change. The
// returned function removes the registration; callers must invoke it on
// teardown so callbacks never reach a disposed listener.
func (c *RESTClient) Subscribe(fn func(*Session)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close releases the underlying HTTP resources.
func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// setSession swaps the current session and notifies subscribers outside the
// lock. Refreshes of the same principal do not notify.
func (c *RESTClient) setSession(s *Session) {
	c.mu.Lock()
	prev := c.current
	c.current = s

	sameUID := prev != nil && s != nil && prev.UID == s.UID
	var fns []func(*Session)
	if !sameUID {
		fns = make([]func(*Session), 0, len(c.subs))
		for _, fn := range c.subs {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
