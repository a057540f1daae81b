package kvstore

import (
	"context"

	"go.uber.org/zap"
)

// Open выбирает вариант хранилища при старте.
//
// Если backend == nil (постоянное хранилище отключено) или Ping вернул ошибку,
// возвращается Memory. Иначе — Persistent поверх backend.
func Open[V any](ctx context.Context, backend Backend, log *zap.Logger) Store[V] {
	if log == nil {
		log = zap.NewNop()
	}
	if backend == nil {
		log.Info("persistent storage disabled, using in-memory store")
		return NewMemory[V]()
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	if err := backend.Ping(pingCtx); err != nil {
		log.Warn("persistent storage unavailable, using in-memory store", zap.Error(err))
		return NewMemory[V]()
	}
	return NewPersistent[V](backend, log, DefaultTimeout)
}
