package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/prefs"
	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
)

const prefsPage = "/admin/preferences"

// NewPrefsCmd создаёт группу команд для настроек текущего пользователя.
//
// Пример использования:
//
//	gophadmin prefs show
//	gophadmin prefs get hideMenu
//	gophadmin prefs set hideMenu true
func NewPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Настройки текущего пользователя",
	}

	cmd.AddCommand(newPrefsShowCmd(app))
	cmd.AddCommand(newPrefsGetCmd(app))
	cmd.AddCommand(newPrefsSetCmd(app))

	return cmd
}

func newPrefsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Показать все настройки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := requireLogin(cmd, app, prefsPage, struct{}{})
			if err != nil {
				return err
			}
			p, ok := v.Prefs().Preferences()
			if !ok {
				return serr.ErrNoCurrentUser
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func newPrefsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Показать одну настройку",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := prefs.Lookup(args[0]); !ok {
				return fmt.Errorf("%w: %q (known: %v)", serr.ErrUnknownPreference, args[0], prefs.Names())
			}
			v, err := requireLogin(cmd, app, prefsPage, struct{}{})
			if err != nil {
				return err
			}
			val, ok := v.Prefs().Pref(args[0])
			if !ok {
				return serr.ErrNoCurrentUser
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}

func newPrefsSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Изменить настройку",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := requireLogin(cmd, app, prefsPage, struct{}{})
			if err != nil {
				return err
			}
			if err := v.Prefs().SetPref(args[0], args[1]); err != nil {
				return err
			}
			val, _ := v.Prefs().Pref(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%v\n", args[0], val)
			return nil
		},
	}
}
