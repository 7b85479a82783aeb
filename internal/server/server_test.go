package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusmap/internal/config"
	"campusmap/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testTimeoutMs = 15000

func testConfig() *config.Config {
	return &config.Config{
		Port:           "8473",
		Env:            "test",
		SessionTTL:     time.Hour,
		SweepInterval:  time.Hour,
		PlaceRetention: 24 * time.Hour,
		ResetTokenTTL:  time.Hour,
	}
}

// newTestServer wires a full server against in-memory SQLite and miniredis
// and returns a Fiber app with all routes registered.
func newTestServer(t *testing.T, mutate ...func(*config.Config)) (*Server, *fiber.App) {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db := testutil.NewTestDB(t)
	_, redisClient := testutil.NewTestRedis(t)

	srv, err := NewServerWithDeps(cfg, db, redisClient)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// sessionCookieFrom extracts the session cookie value set by a response.
func sessionCookieFrom(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	return req
}

// registerUser signs up a user through the API and returns its session token.
func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.edu",
		"password": "password1",
	}), testTimeoutMs)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return sessionCookieFrom(t, resp)
}
