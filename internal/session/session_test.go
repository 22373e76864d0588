package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accounts-service/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryStoreRoundTrip tests save, lookup and delete against the
// in-memory store
func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, store.Save(ctx, "tok-1", 42, time.Hour))

	userID, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	_, err = store.Lookup(ctx, "tok-2")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "tok-1"))
	_, err = store.Lookup(ctx, "tok-1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

// TestMemoryStoreExpiry tests that an expired session is invisible to
// lookups even before the reaper runs
func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, store.Save(ctx, "stale", 7, -time.Second))

	_, err := store.Lookup(ctx, "stale")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

// TestMemoryStorePurge tests that the reaper removes only expired entries
func TestMemoryStorePurge(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, store.Save(ctx, "live", 1, time.Hour))
	require.NoError(t, store.Save(ctx, "stale-1", 2, -time.Minute))
	require.NoError(t, store.Save(ctx, "stale-2", 3, -time.Minute))

	removed := store.Purge(time.Now())
	assert.Equal(t, 2, removed, "Only the expired sessions are dropped")

	userID, err := store.Lookup(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, uint(1), userID)
}

// TestManager tests the issue/resolve/destroy cycle
func TestManager(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(), time.Hour)

	tok, err := mgr.Create(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	other, err := mgr.Create(ctx, 43)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other, "Every session gets its own token")

	userID, err := mgr.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	require.NoError(t, mgr.Destroy(ctx, tok))
	_, err = mgr.Resolve(ctx, tok)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

// TestCookieRoundTrip tests writing and reading the session cookie
func TestCookieRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	session.WriteCookie(w, req, "tok-abc")

	res := w.Result()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	assert.Equal(t, session.CookieName, cookie.Name)
	assert.Equal(t, "tok-abc", cookie.Value)
	assert.True(t, cookie.HttpOnly, "Session cookie must not be script-readable")
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.Secure, "Plain HTTP request gets no Secure flag")

	// Feed the written cookie back through a request
	readReq := httptest.NewRequest(http.MethodGet, "/", nil)
	readReq.AddCookie(cookie)

	tok, ok := session.ReadCookie(readReq)
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", tok)
}

// TestReadCookieMissing tests the no-cookie and blank-cookie cases
func TestReadCookieMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := session.ReadCookie(req)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "   "})
	_, ok = session.ReadCookie(req)
	assert.False(t, ok, "A blank cookie value is no session")
}

// TestClearCookie tests that clearing expires the cookie immediately
func TestClearCookie(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	session.ClearCookie(w, req)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
