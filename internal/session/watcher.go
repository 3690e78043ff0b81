package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// StartRefresh keeps the current session alive by exchanging the refresh
// token for a fresh ID token shortly before expiry. It blocks until ctx is
// cancelled and is meant to run in its own goroutine, started once at
// process start.
//
// When the provider rejects the refresh token, the session is considered
// lost: the local state is cleared and subscribers are notified with nil.
// This is the asynchronous path by which an external sign-out (another
// device, revoked account) reaches the view controller.
func (c *RESTClient) StartRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s := c.Current()
			if s == nil {
				continue
			}
			if time.Until(s.ExpiresAt) > 2*interval {
				continue
			}

			rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			refreshed, err := c.refresh(rctx, s.RefreshToken)
			cancel()

			if err != nil {
				c.logger.Warn(ctx, "session refresh failed, signing out", "err", err)
				c.setSession(nil)
				continue
			}
			c.setSession(refreshed)
			c.logger.Debug(ctx, "session refreshed", "uid", refreshed.UID)

		case <-ctx.Done():
			return
		}
	}
}

// refreshResponse is the token endpoint's grant response.
type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

func (c *RESTClient) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s/token?key=%s", c.tokenEndpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte(form.Encode())))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint status %s: %s", resp.Status, data)
	}

	var rr refreshResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		return nil, err
	}

	s := &Session{
		UID:          rr.UserID,
		IDToken:      rr.IDToken,
		RefreshToken: rr.RefreshToken,
	}
	if secs, err := strconv.Atoi(rr.ExpiresIn); err == nil && secs > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	if claims, err := claimsFromIDToken(rr.IDToken); err == nil {
		s.Email = claims.Email
		if s.UID == "" {
			s.UID = claims.UID
		}
		if s.ExpiresAt.IsZero() {
			s.ExpiresAt = claims.ExpiresAt
		}
	}
	return s, nil
}
