package tests

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/config"
)

func TestCredentialsPath_ReturnsPathInHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := config.CredentialsPath()
	if err != nil {
		t.Fatalf("CredentialsPath returned error: %v", err)
	}

	want := filepath.Join(home, ".gophadmin", "credentials.json")
	if p != want {
		t.Fatalf("expected %q, got %q", want, p)
	}
}

func TestLoadCredentials_FileNotExists_ReturnsEmptyCredentials(t *testing.T) {
	p := filepath.Join(t.TempDir(), "no-such-file.json")

	creds, err := config.LoadCredentials(p)
	if err != nil {
		t.Fatalf("LoadCredentials returned error: %v", err)
	}
	if creds == nil {
		t.Fatalf("expected non-nil creds")
	}
	if creds.SessionToken != "" {
		t.Fatalf("expected empty creds, got %+v", *creds)
	}
}

func TestSaveAndLoadCredentials_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "credentials.json") // вложенная директория

	if err := config.SaveCredentials(p, &config.Credentials{SessionToken: "session-1"}); err != nil {
		t.Fatalf("SaveCredentials returned error: %v", err)
	}

	got, err := config.LoadCredentials(p)
	if err != nil {
		t.Fatalf("LoadCredentials returned error: %v", err)
	}
	if got.SessionToken != "session-1" {
		t.Fatalf("expected SessionToken=session-1, got %q", got.SessionToken)
	}

	// проверим права файла только на linux
	if runtime.GOOS != "windows" {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("Stat returned error: %v", err)
		}
		if perm := st.Mode().Perm(); perm&0o077 != 0 {
			t.Fatalf("expected no group/other permissions, got %o", perm)
		}
	}
}

func TestLoadCredentials_BadJSON_ReturnsError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "credentials.json")

	if err := os.WriteFile(p, []byte("{bad-json"), 0o600); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	if _, err := config.LoadCredentials(p); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
