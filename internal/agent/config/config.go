// Package config отвечает за локальную конфигурацию агента:
//   - чтение agent.yaml (отсутствие файла не ошибка)
//   - подстановку переменных окружения вида ${GOPHADMIN_TOKEN}
//   - переопределения через переменные окружения с префиксом GOPHADMIN_
//   - проставление дефолтов и валидацию
//   - учётные данные (токен сессии) в credentials.json
//
// Все файлы лежат в ~/.gophadmin.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/api"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/gate"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/kvstore"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/session"
)

// EnvPrefix — префикс переменных окружения агента.
const EnvPrefix = "GOPHADMIN_"

// Бэкенды хранилища настроек.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

const (
	DefaultServerURL = "http://127.0.0.1:8080"
	DefaultLogLevel  = "info"
)

// Config — корневая структура конфига агента.
type Config struct {
	ServerURL      string        `yaml:"server_url" env:"SERVER_URL"`
	Insecure       bool          `yaml:"insecure" env:"INSECURE"` // самоподписанный сертификат devserver
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	LogoutDelay    time.Duration `yaml:"logout_delay" env:"LOGOUT_DELAY"`
	Paths          PathsConfig   `yaml:"paths" envPrefix:"PATHS_"`
	Storage        StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Log            LogConfig     `yaml:"log" envPrefix:"LOG_"`
}

// PathsConfig — пути эндпоинтов сервера и страницы входа.
type PathsConfig struct {
	User   string `yaml:"user" env:"USER"`
	Logout string `yaml:"logout" env:"LOGOUT"`
	Login  string `yaml:"login" env:"LOGIN"`
}

// StorageConfig — где хранятся настройки пользователей.
type StorageConfig struct {
	Backend string      `yaml:"backend" env:"BACKEND"` // file|redis|memory
	Path    string      `yaml:"path" env:"PATH"`
	Redis   RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
}

// RedisConfig — подключение к Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	DB       int    `yaml:"db" env:"DB"`
	Password string `yaml:"password" env:"PASSWORD"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

// LogConfig — настройки логирования (zap).
type LogConfig struct {
	File  string `yaml:"file" env:"FILE"`
	Level string `yaml:"level" env:"LEVEL"` // debug|info|warn|error
}

// Dir возвращает каталог агента: <home>/.gophadmin.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gophadmin"), nil
}

// DefaultPath возвращает путь к agent.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agent.yaml"), nil
}

// Load читает YAML, подставляет ${VAR}, применяет переменные окружения,
// проставляет дефолты и валидирует.
//
// Если файла нет, конфиг собирается из окружения и дефолтов.
func Load(path string) (*Config, error) {
	var cfg Config

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		raw = []byte(ExpandEnv(string(raw)))
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envRe = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ExpandEnv заменяет ${VAR} на значение из окружения.
// Незаданная переменная остаётся как есть.
func ExpandEnv(s string) string {
	return envRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := envRe.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		return m
	})
}

// ApplyDefaults — дефолтные значения, если поле не задано.
func ApplyDefaults(cfg *Config) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = api.DefaultTimeout
	}
	if cfg.LogoutDelay == 0 {
		cfg.LogoutDelay = session.DefaultLogoutDelay
	}
	if cfg.Paths.User == "" {
		cfg.Paths.User = api.DefaultUserPath
	}
	if cfg.Paths.Logout == "" {
		cfg.Paths.Logout = api.DefaultLogoutPath
	}
	if cfg.Paths.Login == "" {
		cfg.Paths.Login = gate.DefaultLoginPath
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFile
	}
	if cfg.Storage.Backend == BackendFile && cfg.Storage.Path == "" {
		if p, err := kvstore.DefaultFilePath(); err == nil {
			cfg.Storage.Path = p
		}
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = kvstore.DefaultRedisPrefix
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.File == "" {
		if dir, err := Dir(); err == nil {
			cfg.Log.File = filepath.Join(dir, "logs", "agent.log")
		}
	}
}

// Validate проверяет, что конфиг заполнен корректно.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url некорректен: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url должен начинаться с http:// или https:// (сейчас %q)", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server_url без хоста: %q", c.ServerURL)
	}
	if strings.Contains(c.ServerURL, "${") {
		return fmt.Errorf("server_url содержит неподставленную переменную: %q", c.ServerURL)
	}

	if c.RequestTimeout < 0 {
		return errors.New("request_timeout не может быть отрицательным")
	}
	if c.LogoutDelay < 0 {
		return errors.New("logout_delay не может быть отрицательным")
	}

	for name, p := range map[string]string{
		"paths.user":   c.Paths.User,
		"paths.logout": c.Paths.Logout,
		"paths.login":  c.Paths.Login,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s должен начинаться с \"/\" (сейчас %q)", name, p)
		}
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Path == "" {
			return errors.New("storage.path обязателен для backend=file")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr обязателен для backend=redis")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend должен быть file|redis|memory (сейчас %q)", c.Storage.Backend)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level должен быть debug|info|warn|error (сейчас %q)", c.Log.Level)
	}
	return nil
}
