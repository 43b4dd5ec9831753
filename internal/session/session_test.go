package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/config"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", &Data{UserID: 7, Flashes: []string{"hi"}}, time.Hour))
	data, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, uint64(7), data.UserID)
	require.Equal(t, []string{"hi"}, data.Flashes)

	// Loaded data is a copy.
	data.UserID = 99
	again, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, uint64(7), again.UserID)

	now = now.Add(time.Hour)
	expired, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, expired)
	require.Zero(t, store.Len())

	missing, err := store.Load(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestManagerFallsBackToMemory(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	manager := NewManager(config.RedisConfig{Enabled: true, Addr: "127.0.0.1:1"}, func() time.Time { return now }, nil)
	defer func() { _ = manager.Close() }()
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "s1", &Data{UserID: 3}, time.Hour))
	require.True(t, manager.isBreakerActive(now))

	data, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, data)
	require.Equal(t, uint64(3), data.UserID)

	require.NoError(t, manager.Delete(ctx, "s1"))
	gone, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestManagerWithoutRedisUsesMemory(t *testing.T) {
	manager := NewManager(config.RedisConfig{Enabled: true}, nil, nil)
	require.False(t, manager.cfg.Enabled)
	require.NoError(t, manager.Save(context.Background(), "s2", &Data{UserID: 1}, time.Minute))
	require.Equal(t, 1, manager.memory.Len())
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(store, CookieOptions{Name: "rootly_session", Secret: testSecret, TTL: time.Hour}))
	r.POST("/login/:id", func(c *gin.Context) {
		id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
		sess := Get(c)
		sess.Login(id)
		sess.AddFlash("Welcome back!")
		c.Redirect(http.StatusFound, "/whoami")
	})
	r.GET("/whoami", func(c *gin.Context) {
		sess := Get(c)
		flashes := sess.Flashes()
		c.String(http.StatusOK, "%d|%s", sess.UserID(), strings.Join(flashes, ","))
	})
	r.GET("/logout", func(c *gin.Context) {
		sess := Get(c)
		sess.Logout()
		sess.AddFlash("You have been logged out.")
		c.Redirect(http.StatusFound, "/")
	})
	return r
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "rootly_session" {
			return cookie
		}
	}
	t.Fatalf("expected session cookie in response")
	return nil
}

func TestMiddlewareLoginFlashAndLogout(t *testing.T) {
	store := NewMemoryStore(nil)
	r := newTestRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login/42", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	cookie := sessionCookie(t, rec)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.NotContains(t, cookie.Value, "42")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "42|Welcome back!", rec.Body.String())

	// Flashes are shown once.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "42|", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	loggedOut := sessionCookie(t, rec)
	require.NotEqual(t, cookie.Value, loggedOut.Value)

	// The pre-logout cookie no longer resolves to a session.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "0|", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(loggedOut)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "0|You have been logged out.", rec.Body.String())
}

func TestMiddlewareIgnoresTamperedCookie(t *testing.T) {
	store := NewMemoryStore(nil)
	require.NoError(t, store.Save(context.Background(), "known-id", &Data{UserID: 5}, time.Hour))
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "rootly_session", Value: "known-id"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "0|", rec.Body.String())
}

func TestAnonymousRequestSetsNoCookie(t *testing.T) {
	r := newTestRouter(NewMemoryStore(nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Empty(t, rec.Result().Cookies())
}
