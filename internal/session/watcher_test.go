package session

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresh_Success(t *testing.T) {
	idToken := makeIDToken(t, "u1", "a@b.c", time.Now().Add(time.Hour))

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		require.Equal(t, "rt-old", r.Form.Get("refresh_token"))
		w.Write([]byte(`{"user_id":"u1","id_token":"` + idToken + `","refresh_token":"rt-new","expires_in":"3600"}`))
	}))

	s, err := c.refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UID)
	assert.Equal(t, "a@b.c", s.Email)
	assert.Equal(t, "rt-new", s.RefreshToken)
}

func TestStartRefresh_FailureClearsSessionAndNotifiesNil(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"TOKEN_EXPIRED"}}`))
	}))

	// Session about to expire so the very first tick triggers a refresh.
	c.setSession(&Session{UID: "u1", RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Millisecond)})

	sawNil := make(chan struct{})
	var once atomic.Bool
	defer c.Subscribe(func(s *Session) {
		if s == nil && once.CompareAndSwap(false, true) {
			close(sawNil)
		}
	})()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.StartRefresh(ctx, 10*time.Millisecond)

	select {
	case <-sawNil:
	case <-time.After(2 * time.Second):
		t.Fatal("expected session loss notification")
	}
	assert.Nil(t, c.Current())
}

func TestStartRefresh_StopsOnContextCancel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.StartRefresh(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}
