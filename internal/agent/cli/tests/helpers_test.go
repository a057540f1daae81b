package tests

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/config"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/kvstore"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/devserver"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// devServer поднимает devserver и выдаёт токен для a@b.com / u1.
func devServer(t *testing.T) (*httptest.Server, *devserver.Sessions, string) {
	t.Helper()

	sessions := devserver.NewSessions()
	srv := httptest.NewServer(devserver.NewRouter(devserver.NewHandler(sessions, nil)))
	t.Cleanup(srv.Close)

	token, _, err := sessions.Issue(models.User{Email: "a@b.com", UUID: "u1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return srv, sessions, token
}

func newApp(t *testing.T, serverURL, token string) *cli.App {
	t.Helper()

	cfg := &config.Config{
		ServerURL:   serverURL,
		LogoutDelay: time.Millisecond,
		Storage:     config.StorageConfig{Backend: config.BackendMemory},
	}
	config.ApplyDefaults(cfg)

	return &cli.App{
		Config:    cfg,
		CredsPath: filepath.Join(t.TempDir(), "credentials.json"),
		Creds:     &config.Credentials{SessionToken: token},
		Store:     kvstore.NewMemory[models.Preferences](),
	}
}

func run(cmd *cobra.Command, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	// nil заставил бы cobra взять os.Args с флагами go test
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
