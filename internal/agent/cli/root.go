// Package cli реализует командный интерфейс (CLI) агента админки gophadmin.
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - загрузку конфига агента, токена сессии и открытие хранилища настроек;
//   - сборку кэша сессии, гейтов и менеджера настроек для команд;
//   - вывод результата пользователю.
//
// Точка входа пакета — функция Execute, для встраивания и тестов — Run.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/api"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/config"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/kvstore"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/session"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// App содержит состояние CLI-приложения, разделяемое между командами.
//
// Экземпляр App создаётся при построении root-команды, заполняется
// в PersistentPreRunE и передаётся в подкоманды. В тестах App собирается вручную.
type App struct {
	// ConfigPath — путь к agent.yaml.
	ConfigPath string
	// Config — загруженный конфиг агента.
	Config *config.Config

	// CredsPath — путь к файлу с токеном сессии.
	CredsPath string
	// Creds — загруженные учётные данные. Может быть nil до PersistentPreRunE.
	Creds *config.Credentials

	// Log — файловый логгер агента. nil означает логгер без вывода.
	Log *logger.HTTPLogger
	// Store — хранилище настроек пользователей.
	Store kvstore.Store[models.Preferences]

	cache   *session.Cache
	closers []func() error
}

func (a *App) logger() *logger.HTTPLogger {
	if a.Log == nil {
		a.Log = logger.NewNop()
	}
	return a.Log
}

func (a *App) token() string {
	if a.Creds == nil {
		return ""
	}
	return a.Creds.SessionToken
}

// Client создаёт API-клиент с текущим токеном сессии.
func (a *App) Client() *api.Client {
	return a.clientWithToken(a.token())
}

func (a *App) clientWithToken(token string) *api.Client {
	opts := []api.Option{
		api.WithToken(token),
		api.WithLogger(a.logger()),
		api.WithPaths(a.Config.Paths.User, a.Config.Paths.Logout),
		api.WithTimeout(a.Config.RequestTimeout),
	}
	if a.Config.Insecure {
		opts = append(opts, api.WithInsecureTLS())
	}
	return NewAPIClient(a.Config.ServerURL, opts...)
}

// Session возвращает кэш сессии процесса, создавая его при первом вызове.
//
// Уведомление о выходе печатается в stdout команды, перезагрузка после
// выхода стирает сохранённый токен.
func (a *App) Session(cmd *cobra.Command) *session.Cache {
	if a.cache != nil {
		return a.cache
	}
	out := cmd.OutOrStdout()
	a.cache = session.New(a.Client(),
		session.WithLogger(a.logger().Logger),
		session.WithLogoutDelay(a.Config.LogoutDelay),
		session.WithNotifier(session.NotifierFunc(func(msg string) {
			fmt.Fprintln(out, msg)
		})),
		session.WithReload(a.forgetToken),
	)
	return a.cache
}

// forgetToken стирает токен сессии локально.
func (a *App) forgetToken() {
	a.Creds = &config.Credentials{}
	if a.CredsPath == "" {
		return
	}
	if err := config.SaveCredentials(a.CredsPath, a.Creds); err != nil {
		a.logger().Error("failed to clear credentials", zap.Error(err))
	}
}

// LoginURL возвращает абсолютный адрес страницы входа для target.
func (a *App) LoginURL(target string) string {
	return strings.TrimRight(a.Config.ServerURL, "/") + target
}

// OpenStore открывает хранилище настроек по конфигу.
//
// memory — только память процесса; file и redis — персистентное хранилище,
// которое при недоступности бэкенда заменяется памятью.
// Возвращённую функцию закрытия нужно вызвать по завершении.
func OpenStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (kvstore.Store[models.Preferences], func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return kvstore.Open[models.Preferences](ctx, nil, log), noop, nil
	case config.BackendFile:
		return kvstore.Open[models.Preferences](ctx, kvstore.NewFileBackend(cfg.Path), log), noop, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		backend := kvstore.NewRedisBackend(client, cfg.Redis.Prefix)
		return kvstore.Open[models.Preferences](ctx, backend, log), backend.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Close освобождает ресурсы, открытые в PersistentPreRunE. Повторный вызов ничего не делает.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return first
}

// init загружает конфиг, учётные данные, логгер и хранилище.
func (a *App) init(cmd *cobra.Command, serverOverride string, insecure bool) error {
	if a.ConfigPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.ConfigPath = p
	}
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	if serverOverride != "" {
		cfg.ServerURL = serverOverride
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if insecure {
		cfg.Insecure = true
	}
	a.Config = cfg

	if a.CredsPath == "" {
		p, err := config.CredentialsPath()
		if err != nil {
			return err
		}
		a.CredsPath = p
	}
	creds, err := config.LoadCredentials(a.CredsPath)
	if err != nil {
		return err
	}
	a.Creds = creds

	a.Log = logger.New(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level})

	store, closeStore, err := OpenStore(cmd.Context(), cfg.Storage, a.Log.Logger)
	if err != nil {
		return err
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)
	return nil
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// buildVersion и buildDate используются для вывода информации о сборке (команда version).
// Ресурсы, открытые командой, освобождает Run; при прямом вызове Execute
// у возвращённой команды хранилище и логгер не закрываются.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	cmd, _ := newRoot(buildVersion, buildDate)
	return cmd
}

func newRoot(buildVersion, buildDate string) (*cobra.Command, *App) {
	app := &App{}
	var (
		serverURL string
		insecure  bool
	)

	cmd := &cobra.Command{
		Use:   "gophadmin",
		Short: "gophadmin — агент админки: сессия и настройки пользователя",
		Long: `gophadmin CLI.

Команды:
  login     Сохранить токен сессии (проверяется на сервере)
  whoami    Текущий пользователь (нужен вход)
  prefs     Настройки текущего пользователя
  logout    Выйти и забыть токен
  version   Версия и дата сборки

Примеры:

Вход (токен выдаёт devserver при старте):
  gophadmin login
  echo "$TOKEN" | gophadmin login --token-stdin

Настройки:
  gophadmin prefs show
  gophadmin prefs set hideMenu true
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd, serverURL, insecure)
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "path to agent.yaml (default ~/.gophadmin/agent.yaml)")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")

	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewWhoamiCmd(app))
	cmd.AddCommand(NewPrefsCmd(app))
	cmd.AddCommand(NewLogoutCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd, app
}

// Run выполняет команду с аргументами args и освобождает ресурсы App
// (соединение с Redis, файл лога) независимо от исхода команды.
//
// Ошибка команды важнее ошибки закрытия и возвращается первой.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, buildVersion, buildDate string) (err error) {
	cmd, app := newRoot(buildVersion, buildDate)
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd.ExecuteContext(ctx)
}

// Execute запускает обработку CLI-команд.
//
// При ошибке выполнения команды сообщение выводится в stderr, после чего процесс
// завершается с кодом 1 (os.Exit(1)).
func Execute(buildVersion, buildDate string) {
	if err := Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, buildVersion, buildDate); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
