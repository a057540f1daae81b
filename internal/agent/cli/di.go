package cli

import (
	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/api"
)

// для тестов
var (
	NewAPIClient = api.NewClient
	ReadToken    = func(cmd *cobra.Command, fromStdin bool) (string, error) {
		return readToken(cmd, fromStdin)
	}
)
