package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type whoamiProps struct {
	JSON bool
}

// NewWhoamiCmd создаёт команду вывода текущего пользователя.
func NewWhoamiCmd(app *App) *cobra.Command {
	var props whoamiProps

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Показать текущего пользователя",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := requireLogin(cmd, app, "/admin", props)
			if err != nil {
				return err
			}
			u, _ := v.User()

			if v.Props.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "email=%s\nuuid=%s\n", u.Email, u.UUID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&props.JSON, "json", false, "print as JSON")

	return cmd
}
