package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout — таймаут одной операции Backend.
const DefaultTimeout = 3 * time.Second

// Persistent — Store поверх Backend со значениями в JSON.
//
// Поведение при ошибках Backend:
//   - Set: значение всегда попадает в теневую Memory, ошибка записи только логируется;
//   - Get: если Backend не ответил, ключа нет или JSON битый — значение берётся из Memory;
//   - ключ, запись которого в Backend не удалась, читается из Memory до следующей успешной записи;
//   - ключ, который не удалось прочитать из Backend (ошибка, но не ErrNotFound), считается
//     непрочитанным: Set пишет его только в Memory, пока Get не прочитает его из Backend.
//     Иначе значение по умолчанию, созданное после сбоя чтения, затёрло бы настоящую запись.
//     Изменения такого ключа, сделанные во время сбоя, теряются, когда Backend снова отвечает.
//
// Так сбой постоянного хранилища не виден вызывающему коду, а данные
// остаются доступны хотя бы до конца процесса.
type Persistent[V any] struct {
	backend Backend
	shadow  *Memory[V]
	log     *zap.Logger
	timeout time.Duration

	mu         sync.Mutex
	dirty      map[string]struct{}
	unreadable map[string]struct{}
}

// NewPersistent создаёт Persistent поверх backend.
// log может быть nil, timeout <= 0 заменяется на DefaultTimeout.
func NewPersistent[V any](backend Backend, log *zap.Logger, timeout time.Duration) *Persistent[V] {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Persistent[V]{
		backend:    backend,
		shadow:     NewMemory[V](),
		log:        log,
		timeout:    timeout,
		dirty:      make(map[string]struct{}),
		unreadable: make(map[string]struct{}),
	}
}

// Get читает значение из Backend, при любой ошибке — из теневой копии.
func (p *Persistent[V]) Get(key string) (V, bool) {
	if p.isDirty(key) {
		return p.shadow.Get(key)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	raw, err := p.backend.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p.mark(p.unreadable, key, false)
		} else {
			p.mark(p.unreadable, key, true)
			p.log.Warn("kvstore load failed, serving in-memory copy", zap.String("key", key), zap.Error(err))
		}
		return p.shadow.Get(key)
	}
	p.mark(p.unreadable, key, false)

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		p.log.Warn("kvstore value is not valid json, serving in-memory copy", zap.String("key", key), zap.Error(err))
		return p.shadow.Get(key)
	}
	return v, true
}

// Set пишет значение в теневую копию и в Backend.
func (p *Persistent[V]) Set(key string, value V) {
	p.shadow.Set(key, value)

	raw, err := json.Marshal(value)
	if err != nil {
		p.log.Error("kvstore marshal failed", zap.String("key", key), zap.Error(err))
		p.mark(p.dirty, key, true)
		return
	}

	if p.isUnreadable(key) {
		p.log.Warn("kvstore value was not read from backend, keeping write in memory", zap.String("key", key))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err = p.backend.Save(ctx, key, raw)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.dirty[key] = struct{}{}
		p.log.Warn("kvstore save failed, value kept in memory", zap.String("key", key), zap.Error(err))
		return
	}
	delete(p.dirty, key)
}

func (p *Persistent[V]) mark(set map[string]struct{}, key string, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if on {
		set[key] = struct{}{}
	} else {
		delete(set, key)
	}
}

func (p *Persistent[V]) isDirty(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.dirty[key]
	return ok
}

func (p *Persistent[V]) isUnreadable(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.unreadable[key]
	return ok
}
