package cli

import (
	"github.com/spf13/cobra"
)

// NewLogoutCmd создаёт команду выхода.
//
// Сервер завершает сессию, агент печатает "logged out", выжидает паузу
// logout_delay и стирает локальный токен. При ошибке сервера токен остаётся.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти и забыть токен сессии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Session(cmd).Logout(cmd.Context())
		},
	}
}
