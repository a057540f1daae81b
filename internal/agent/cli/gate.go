package cli

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/gate"
	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
)

// requireLogin строит обязательный гейт для страницы page и ждёт его разрешения.
//
// Если пользователя нет, в stderr печатается адрес страницы входа,
// а команда завершается ошибкой serr.ErrUnauthenticated.
func requireLogin[A any](cmd *cobra.Command, app *App, page string, props A) (*gate.View[A], error) {
	var (
		mu     sync.Mutex
		target string
	)
	nav := gate.NavigatorFunc(func(t string) {
		mu.Lock()
		target = t
		mu.Unlock()
	})

	ctx := cmd.Context()
	m := gate.NewMandatory(ctx, app.Session(cmd), app.Store, nav, page,
		gate.WithLoginPath(app.Config.Paths.Login))
	v := gate.NewView(props, m)

	if _, err := v.Wait(ctx); err != nil {
		return nil, err
	}
	if v.Phase() == gate.PhasePending {
		// разрешение прервано отменой контекста команды
		return nil, v.Err()
	}
	if !v.Ready() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(cmd.ErrOrStderr(), "login required: %s\n", app.LoginURL(target))
		if err := v.Err(); err != nil {
			return nil, err
		}
		return nil, serr.ErrUnauthenticated
	}
	return v, nil
}
