package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/config"
)

func TestLogout_RevokesAndForgetsToken(t *testing.T) {
	srv, sessions, token := devServer(t)

	app := newApp(t, srv.URL, token)
	require.NoError(t, config.SaveCredentials(app.CredsPath, app.Creds))

	out, _, err := run(cli.NewLogoutCmd(app))
	require.NoError(t, err)
	require.Equal(t, "logged out\n", out)

	_, ok := sessions.Lookup(token)
	require.False(t, ok)

	loaded, err := config.LoadCredentials(app.CredsPath)
	require.NoError(t, err)
	require.Empty(t, loaded.SessionToken)
}

func TestLogout_ServerError_KeepsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	app := newApp(t, srv.URL, "token-1")
	require.NoError(t, config.SaveCredentials(app.CredsPath, app.Creds))

	out, _, err := run(cli.NewLogoutCmd(app))
	require.Error(t, err)
	require.NotContains(t, out, "logged out")

	loaded, err := config.LoadCredentials(app.CredsPath)
	require.NoError(t, err)
	require.Equal(t, "token-1", loaded.SessionToken)
}
