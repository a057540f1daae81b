// Package main содержит точку входа локального devserver админки.
//
// Пакет отвечает за:
//   - загрузку переменных окружения из файла .env (если он присутствует);
//   - загрузку конфигурации из окружения (GOPHADMIN_DEVSERVER_*);
//   - выдачу токена сессии для seed-пользователя и вывод его в stdout;
//   - запуск HTTP(S)-сервера и graceful shutdown по SIGINT/SIGTERM/SIGQUIT.
//
// Пакет не содержит бизнес-логики и не предназначен для unit-тестирования.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/devserver"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := devserver.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	httpLogger := logger.New(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	defer httpLogger.Sync()
	sugar := httpLogger.Sugar()

	if envErr != nil {
		sugar.Warnf("no .env file loaded, error: %v", envErr)
	}

	sessions := devserver.NewSessions()
	token, seed, err := sessions.Issue(models.User{Email: cfg.SeedEmail, UUID: cfg.SeedUUID})
	if err != nil {
		sugar.Fatal(err)
	}

	router := devserver.NewRouter(devserver.NewHandler(sessions, httpLogger))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheme := "http"
		if cfg.TLS() {
			scheme = "https"
		}
		sugar.Infof("devserver started on %s://%s", scheme, cfg.Addr)
		fmt.Printf("devserver: %s://%s\n", scheme, cfg.Addr)
		fmt.Printf("user:      %s (%s)\n", seed.Email, seed.UUID)
		fmt.Printf("token:     %s\n", token)

		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			sugar.Warn("tls is disabled, serving plain http")
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalf("devserver stopped with error: %v", err)
	}
	sugar.Info("devserver gracefully stopped")
}
