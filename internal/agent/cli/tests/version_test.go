package tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/cli"
)

func TestVersionCmd_Text(t *testing.T) {
	out, _, err := run(cli.NewVersionCmd("v0.3.0", "2026-01-16"))
	require.NoError(t, err)
	require.Equal(t, "gophadmin v0.3.0 (built 2026-01-16)\n", out)
}

func TestVersionCmd_JSON(t *testing.T) {
	out, _, err := run(cli.NewVersionCmd("v0.3.0", "2026-01-16"), "--json")
	require.NoError(t, err)
	require.JSONEq(t, `{"version":"v0.3.0","buildDate":"2026-01-16"}`, out)
}

// сборка без ldflags
func TestVersionCmd_DevBuild(t *testing.T) {
	out, _, err := run(cli.NewVersionCmd("dev", "unknown"))
	require.NoError(t, err)
	require.Equal(t, "gophadmin dev (built unknown)\n", out)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, _, err := run(cli.NewVersionCmd("dev", "unknown"), "extra")
	require.Error(t, err)
}
