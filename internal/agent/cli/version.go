package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// buildInfo — сведения о сборке агента для вывода в JSON.
type buildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
}

// NewVersionCmd создаёт команду version: сборка агента, по которой
// администратор сверяет агент с версией админки.
//
//	$ gophadmin version
//	gophadmin v0.3.0 (built 2026-01-16)
func NewVersionCmd(buildVersion, buildDate string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Версия агента gophadmin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(buildInfo{Version: buildVersion, BuildDate: buildDate})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gophadmin %s (built %s)\n", buildVersion, buildDate)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
