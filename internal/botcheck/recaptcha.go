package botcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/epavlov/todolite/internal/apperr"
	"github.com/epavlov/todolite/internal/config"
	"github.com/epavlov/todolite/internal/logging"
)

// Recaptcha is a Gate backed by the reCAPTCHA verification service.
// It starts unready; Load flips readiness once the service is reachable,
// mirroring the widget script loading in a browser.
type Recaptcha struct {
	siteKey  string
	secret   string
	endpoint string
	http     *http.Client
	logger   logging.Logger

	mu       sync.Mutex
	ready    bool
	verified bool
}

func NewRecaptcha(cfg *config.Config, logger logging.Logger) *Recaptcha {
	return &Recaptcha{
		siteKey:  cfg.RecaptchaSiteKey,
		secret:   cfg.RecaptchaSecret,
		endpoint: cfg.RecaptchaEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger.With("component", "botcheck"),
	}
}

// Load probes the verification endpoint and marks the gate ready when it is
// reachable. Meant to run once at startup, typically in its own goroutine.
func (r *Recaptcha) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		r.logger.Warn(ctx, "verification widget not reachable", "err", err)
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	resp.Body.Close()

	r.mu.Lock()
	r.ready = true
	r.mu.Unlock()
	r.logger.Debug(ctx, "verification widget loaded")
	return nil
}

func (r *Recaptcha) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

func (r *Recaptcha) IsVerified() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verified
}

// verifyResponse is the siteverify reply.
type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify submits the challenge token. Rejected tokens leave the gate
// unverified and surface as apperr.ErrInvalidInput; transport failures as
// apperr.ErrProvider.
func (r *Recaptcha) Verify(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperr.ErrInvalidInput
	}

	form := url.Values{}
	form.Set("secret", r.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}

	var vr verifyResponse
	if err := json.Unmarshal(data, &vr); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	if !vr.Success {
		return fmt.Errorf("%w: challenge rejected (%s)", apperr.ErrInvalidInput, strings.Join(vr.ErrorCodes, ", "))
	}

	r.mu.Lock()
	r.verified = true
	r.mu.Unlock()
	return nil
}

// Reset discards the verified state.
func (r *Recaptcha) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified = false
}
