package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authhttp "github.com/aussiebroadwan/authmodes/internal/authmodes/http"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store/drivers/sqlite"
	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testPassword = "pw123456"

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, opts authhttp.Options) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations(context.Background()))

	accounts := service.NewAccounts(st, cryptox.NewArgon2("test-pepper"))
	dispatcher := service.NewDispatcher(
		service.NewStatelessStrategy(accounts, jwtx.NewSignerHS256("stateless-secret"), 0),
		service.NewHybridStrategy(accounts, st,
			jwtx.NewSignerHS256("access-secret"),
			jwtx.NewSignerHS256("refresh-secret"),
			0, 0,
		),
		service.NewSQLSessionStrategy(accounts, 0),
	)

	if opts.Database == nil {
		opts.Database = st
	}
	if opts.Sessions == nil {
		opts.Sessions = st
	}

	router := authhttp.NewRouter(dispatcher, accounts, "test", slogx.Discard(), opts)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *authsdk.Client {
	t.Helper()
	c, err := authsdk.NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func requireAPIError(t *testing.T, err error, status int, reason string) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, reason, apiErr.Reason)
}

func post(t *testing.T, srv *httptest.Server, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) (any, bool) {
	t.Helper()
	var env struct {
		Data  any  `json:"data"`
		Error bool `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Data, env.Error
}

func clearedCookie(resp *http.Response, name string) bool {
	for _, c := range resp.Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestModesEndToEnd(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})
	ctx := context.Background()

	for _, mode := range []string{authsdk.ModeStateless, authsdk.ModeHybrid, authsdk.ModeSession} {
		t.Run(mode, func(t *testing.T) {
			c := newClient(t, srv)
			email := mode + "@x.com"

			data, err := c.Register(ctx, authsdk.Credentials{Email: email, Password: testPassword, Mode: mode})
			require.NoError(t, err)
			require.Equal(t, email, data.Email)
			require.Equal(t, mode == authsdk.ModeHybrid, data.AccessToken != "")
			require.NotEmpty(t, c.Cookie(authsdk.CookieForMode(mode)))

			me, err := c.Me(ctx, mode)
			require.NoError(t, err)
			require.Equal(t, email, me.Email)

			resources, err := c.Resources(ctx, mode)
			require.NoError(t, err)
			require.Len(t, resources, 3)
			require.Equal(t, "Resource 1", resources[0].Name)

			require.NoError(t, c.Logout(ctx, mode))
			require.Empty(t, c.Cookie(authsdk.CookieForMode(mode)))

			_, err = c.Me(ctx, mode)
			requireAPIError(t, err, http.StatusUnauthorized, "Unauthorized")
		})
	}
}

func TestHybridRefreshRotates(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})
	ctx := context.Background()
	c := newClient(t, srv)

	_, err := c.Register(ctx, authsdk.Credentials{Email: "a@x.com", Password: testPassword, Mode: authsdk.ModeSession})
	require.NoError(t, err)

	login, err := c.Login(ctx, authsdk.Credentials{Email: "a@x.com", Password: testPassword, Mode: authsdk.ModeHybrid})
	require.NoError(t, err)
	firstRefresh := c.Cookie(authsdk.CookieRefreshToken)
	require.NotEmpty(t, firstRefresh)

	refreshed, err := c.Refresh(ctx)
	require.NoError(t, err)
	require.NotEqual(t, login.AccessToken, refreshed.AccessToken)
	require.NotEqual(t, firstRefresh, c.Cookie(authsdk.CookieRefreshToken))

	me, err := c.Me(ctx, authsdk.ModeHybrid)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", me.Email)

	t.Run("replayed refresh token is rejected and cleared", func(t *testing.T) {
		resp := post(t, srv, "/api/v1/refresh", "", &http.Cookie{Name: authsdk.CookieRefreshToken, Value: firstRefresh})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.True(t, clearedCookie(resp, authsdk.CookieRefreshToken))

		data, isErr := decodeEnvelope(t, resp)
		require.True(t, isErr)
		require.Equal(t, "Token is invalid", data)
	})

	t.Run("current refresh token still works", func(t *testing.T) {
		_, err := c.Refresh(ctx)
		require.NoError(t, err)
	})
}

func TestRefreshWithoutCookie(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})
	_, err := newClient(t, srv).Refresh(context.Background())
	requireAPIError(t, err, http.StatusUnauthorized, "Token is invalid")
}

func TestHybridRejectsForeignBearer(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})
	ctx := context.Background()
	c := newClient(t, srv)

	_, err := c.Register(ctx, authsdk.Credentials{Email: "a@x.com", Password: testPassword, Mode: authsdk.ModeHybrid})
	require.NoError(t, err)

	// a refresh token is signed with a different secret than access tokens
	c.SetAccessToken(c.Cookie(authsdk.CookieRefreshToken))
	_, err = c.Me(ctx, authsdk.ModeHybrid)
	requireAPIError(t, err, http.StatusUnauthorized, "Token is invalid")
	require.NotEmpty(t, c.Cookie(authsdk.CookieRefreshToken))
}

func TestStatelessCookieIsModeScoped(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})
	ctx := context.Background()
	c := newClient(t, srv)

	_, err := c.Register(ctx, authsdk.Credentials{Email: "a@x.com", Password: testPassword, Mode: authsdk.ModeStateless})
	require.NoError(t, err)

	_, err = c.Me(ctx, authsdk.ModeSession)
	requireAPIError(t, err, http.StatusUnauthorized, "Unauthorized")
}

func TestTamperedCredentialsAreCleared(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})

	tests := []struct {
		name   string
		path   string
		cookie string
		reason string
	}{
		{"stateless", "/api/v1/user", authsdk.CookieToken, "Token is invalid"},
		{"session", "/api/v1/session-user", authsdk.CookieSession, "Session is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+tt.path, nil)
			require.NoError(t, err)
			req.AddCookie(&http.Cookie{Name: tt.cookie, Value: "garbage"})

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.True(t, clearedCookie(resp, tt.cookie))

			data, _ := decodeEnvelope(t, resp)
			require.Equal(t, tt.reason, data)
		})
	}
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})

	t.Run("session without cookie", func(t *testing.T) {
		resp := post(t, srv, "/api/v1/logout", `{"mode":"session"}`)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		data, _ := decodeEnvelope(t, resp)
		require.Equal(t, "Session is invalid", data)
	})

	t.Run("hybrid with garbage token still succeeds", func(t *testing.T) {
		resp := post(t, srv, "/api/v1/logout", `{"mode":"hybrid"}`,
			&http.Cookie{Name: authsdk.CookieRefreshToken, Value: "garbage"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, clearedCookie(resp, authsdk.CookieRefreshToken))

		data, isErr := decodeEnvelope(t, resp)
		require.False(t, isErr)
		require.Equal(t, "Logged out", data)
	})

	t.Run("stateless always succeeds", func(t *testing.T) {
		resp := post(t, srv, "/api/v1/logout", `{"mode":"stateless"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, clearedCookie(resp, authsdk.CookieToken))
	})

	t.Run("invalid mode", func(t *testing.T) {
		resp := post(t, srv, "/api/v1/logout", `{"mode":"cookie"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		data, _ := decodeEnvelope(t, resp)
		require.Equal(t, "Invalid mode", data)
	})
}

func TestAuthenticateFailures(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})
	ctx := context.Background()
	c := newClient(t, srv)

	_, err := c.Register(ctx, authsdk.Credentials{Email: "a@x.com", Password: testPassword, Mode: authsdk.ModeSession})
	require.NoError(t, err)

	t.Run("every invalid field is reported", func(t *testing.T) {
		_, err := c.Register(ctx, authsdk.Credentials{Email: "nope", Password: "short", Mode: "cookie"})
		requireAPIError(t, err, http.StatusBadRequest,
			"Invalid email, Password must be at least 8 characters long, Invalid mode")
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := c.Register(ctx, authsdk.Credentials{Email: "A@x.com", Password: testPassword, Mode: authsdk.ModeHybrid})
		requireAPIError(t, err, http.StatusBadRequest, "Registration failed")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.Login(ctx, authsdk.Credentials{Email: "a@x.com", Password: "wrong-password", Mode: authsdk.ModeSession})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := c.Login(ctx, authsdk.Credentials{Email: "b@x.com", Password: testPassword, Mode: authsdk.ModeSession})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid credentials")
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := post(t, srv, "/api/v1/login", `{"email":`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		data, _ := decodeEnvelope(t, resp)
		require.Equal(t, "Invalid request body", data)
	})
}

func TestHealth(t *testing.T) {
	ctx := context.Background()

	t.Run("live and ready", func(t *testing.T) {
		c := newClient(t, newTestServer(t, authhttp.Options{}))

		live, err := c.GetLiveness(ctx)
		require.NoError(t, err)
		require.Equal(t, "ok", live.Status)
		require.Equal(t, "test", live.Version)
		uptime, err := time.ParseDuration(live.Uptime)
		require.NoError(t, err)
		require.Zero(t, uptime%time.Second)

		ready, err := c.GetReadiness(ctx)
		require.NoError(t, err)
		require.Equal(t, "ok", ready.Status)
		require.Equal(t, "ok", ready.Checks.Database)
		require.Equal(t, "ok", ready.Checks.Sessions)
	})

	t.Run("session backend down", func(t *testing.T) {
		srv := newTestServer(t, authhttp.Options{
			Sessions: pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
		})

		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var health authsdk.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.Equal(t, "degraded", health.Status)
		require.Equal(t, "ok", health.Checks.Database)
		require.Equal(t, "error", health.Checks.Sessions)
	})
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{CORSOrigins: []string{"http://app.example"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "http://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestSwaggerDoc(t *testing.T) {
	srv := newTestServer(t, authhttp.Options{})

	resp, err := http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "/api/v1/refresh")
}
