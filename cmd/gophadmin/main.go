// Package main содержит точку входа CLI-агента админки.
//
// Пакет отвечает за загрузку .env (если есть) и запуск CLI-слоя
// с информацией о версии и дате сборки.
package main

import (
	"github.com/joho/godotenv"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/cli"
)

var (
	// buildVersion содержит версию приложения, передаваемую при сборке.
	// По умолчанию используется значение "dev".
	buildVersion = "dev"
	// buildDate содержит дату сборки приложения.
	// По умолчанию используется значение "unknown".
	buildDate = "unknown"
)

func main() {
	// .env необязателен: переменные GOPHADMIN_* могут прийти из окружения
	_ = godotenv.Load()

	cli.Execute(buildVersion, buildDate)
}
