package kvstore

import (
	"context"
	"fmt"

	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
)

// ErrNotFound возвращается Backend.Load, если ключа нет.
var ErrNotFound = fmt.Errorf("kvstore: %w", serr.ErrNotFound)

// Backend — байтовое постоянное хранилище под Persistent.
//
// Load возвращает ErrNotFound, если ключа нет.
// Ping проверяет, что хранилище доступно; вызывается один раз в Open.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}
