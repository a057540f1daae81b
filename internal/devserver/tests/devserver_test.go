package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/devserver"
	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

func newServer(t *testing.T) (*httptest.Server, *devserver.Sessions) {
	t.Helper()

	sessions := devserver.NewSessions()
	srv := httptest.NewServer(devserver.NewRouter(devserver.NewHandler(sessions, nil)))
	t.Cleanup(srv.Close)
	return srv, sessions
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestSessions_IssueLookupRevoke(t *testing.T) {
	s := devserver.NewSessions()

	token, u, err := s.Issue(models.User{Email: "a@b.com"})
	require.NoError(t, err)
	_, err = uuid.Parse(token)
	require.NoError(t, err)
	require.NotEmpty(t, u.UUID)

	got, ok := s.Lookup(token)
	require.True(t, ok)
	require.Equal(t, u, got)

	require.True(t, s.Revoke(token))
	require.False(t, s.Revoke(token))
	_, ok = s.Lookup(token)
	require.False(t, ok)
	require.Equal(t, 0, s.Len())
}

func TestSessions_Issue_KeepsGivenUUID(t *testing.T) {
	s := devserver.NewSessions()

	_, u, err := s.Issue(models.User{Email: "a@b.com", UUID: "u1"})
	require.NoError(t, err)
	require.Equal(t, "u1", u.UUID)
}

func TestSessions_Issue_EmptyEmail(t *testing.T) {
	_, _, err := devserver.NewSessions().Issue(models.User{})
	require.ErrorIs(t, err, serr.ErrInvalidInput)
}

func TestSessions_Concurrent(t *testing.T) {
	s := devserver.NewSessions()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, _, err := s.Issue(models.User{Email: "a@b.com"})
			if err != nil {
				t.Error(err)
				return
			}
			s.Lookup(token)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, s.Len())
}

func TestUser_ValidToken(t *testing.T) {
	srv, sessions := newServer(t)
	token, _, err := sessions.Issue(models.User{Email: "a@b.com", UUID: "u1"})
	require.NoError(t, err)

	res := get(t, srv.URL+"/api/v1/user", token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, devserver.JSONContentType, res.Header.Get(devserver.ContentType))

	var body devserver.UserResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, devserver.UserResponse{Email: "a@b.com", UUID: "u1"}, body)
}

func TestUser_MissingToken(t *testing.T) {
	srv, _ := newServer(t)

	res := get(t, srv.URL+"/api/v1/user", "")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestUser_UnknownToken(t *testing.T) {
	srv, _ := newServer(t)

	res := get(t, srv.URL+"/api/v1/user", "nope")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogout_RevokesSession(t *testing.T) {
	srv, sessions := newServer(t)
	token, _, err := sessions.Issue(models.User{Email: "a@b.com"})
	require.NoError(t, err)

	res := get(t, srv.URL+"/api/v1/logout", token)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	_, ok := sessions.Lookup(token)
	require.False(t, ok)

	res = get(t, srv.URL+"/api/v1/user", token)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogout_WithoutSession_IsOK(t *testing.T) {
	srv, _ := newServer(t)

	res := get(t, srv.URL+"/api/v1/logout", "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestRouter_PostNotAllowed(t *testing.T) {
	srv, _ := newServer(t)

	res, err := http.Post(srv.URL+"/api/v1/user", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestRouter_EchoesRequestID(t *testing.T) {
	srv, _ := newServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/logout", nil)
	require.NoError(t, err)
	req.Header.Set(devserver.RequestIDHeader, "req-1")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, "req-1", res.Header.Get(devserver.RequestIDHeader))
}

func TestLoggerMiddleware_WritesRequest(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "devserver.log")
	l := logger.New(logger.Options{File: logPath})

	srv := httptest.NewServer(devserver.NewRouter(devserver.NewHandler(devserver.NewSessions(), l)))
	defer srv.Close()

	get(t, srv.URL+"/api/v1/user", "")
	_ = l.Sync()

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	for _, sub := range []string{"HTTP request", "/api/v1/user", "401"} {
		require.True(t, strings.Contains(string(b), sub), "expected %q in %q", sub, string(b))
	}
}

func TestExtractBearer(t *testing.T) {
	require.Equal(t, "abc", devserver.ExtractBearer("Bearer abc"))
	require.Equal(t, "abc", devserver.ExtractBearer("  bearer   abc "))
	require.Equal(t, "", devserver.ExtractBearer("Basic abc"))
	require.Equal(t, "", devserver.ExtractBearer("Bearer"))
	require.Equal(t, "", devserver.ExtractBearer(""))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := devserver.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", cfg.Addr)
	require.Equal(t, "admin@example.com", cfg.SeedEmail)
	require.False(t, cfg.TLS())
}

func TestLoadConfig_CertWithoutKey(t *testing.T) {
	t.Setenv("GOPHADMIN_DEVSERVER_TLS_CERT", "cert.pem")

	_, err := devserver.LoadConfig()
	require.Error(t, err)
}
