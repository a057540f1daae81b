package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config — настройки devserver из окружения.
type Config struct {
	Addr            string        `env:"GOPHADMIN_DEVSERVER_ADDR"             envDefault:"127.0.0.1:8080"`
	CertFile        string        `env:"GOPHADMIN_DEVSERVER_TLS_CERT"`
	KeyFile         string        `env:"GOPHADMIN_DEVSERVER_TLS_KEY"`
	SeedEmail       string        `env:"GOPHADMIN_DEVSERVER_SEED_EMAIL"       envDefault:"admin@example.com"`
	SeedUUID        string        `env:"GOPHADMIN_DEVSERVER_SEED_UUID"`
	ShutdownTimeout time.Duration `env:"GOPHADMIN_DEVSERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	LogFile         string        `env:"GOPHADMIN_DEVSERVER_LOG_FILE"         envDefault:"runtime/logs/devserver.log"`
	LogLevel        string        `env:"GOPHADMIN_DEVSERVER_LOG_LEVEL"        envDefault:"info"`
}

// LoadConfig читает Config из переменных окружения и валидирует его.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TLS сообщает, заданы ли сертификат и ключ.
func (c Config) TLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// Validate проверяет конфиг.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("GOPHADMIN_DEVSERVER_ADDR обязателен")
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("GOPHADMIN_DEVSERVER_TLS_CERT и GOPHADMIN_DEVSERVER_TLS_KEY задаются вместе")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("GOPHADMIN_DEVSERVER_SHUTDOWN_TIMEOUT должен быть > 0")
	}
	return nil
}
