package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/config"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/session"
)

// NewLoginCmd создаёт CLI-команду входа.
//
// Команда читает токен сессии (интерактивно со скрытым вводом или из stdin),
// проверяет его запросом текущего пользователя и только после успешной
// проверки сохраняет в локальный файл учётных данных.
//
// Пример использования:
//
//	gophadmin login
//	echo "$TOKEN" | gophadmin login --token-stdin
func NewLoginCmd(app *App) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Сохранить токен сессии",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := ReadToken(cmd, fromStdin)
			if err != nil {
				return err
			}

			// отдельный кэш: текущий токен процесса ещё не заменён
			cache := session.New(app.clientWithToken(token), session.WithLogger(app.logger().Logger))
			u, err := cache.GetUser(cmd.Context(), true)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			creds := &config.Credentials{SessionToken: token}
			if err := config.SaveCredentials(app.CredsPath, creds); err != nil {
				return err
			}
			app.Creds = creds
			app.cache = nil

			fmt.Fprintf(cmd.OutOrStdout(), "login ok: %s\n", u.Email)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "token-stdin", false, "read session token from stdin")

	return cmd
}

// readToken читает токен сессии.
//
// Режимы:
//   - fromStdin=true: читает токен из STDIN полностью (удобно для скриптов);
//   - fromStdin=false: читает токен интерактивно из терминала со скрытым вводом.
//
// Пустой токен считается ошибкой.
func readToken(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read token from stdin: %w", err)
		}
		token := bytes.TrimSpace(b)
		if len(token) == 0 {
			return "", errors.New("empty token on stdin")
		}
		return string(token), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --token-stdin")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Session token: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}
