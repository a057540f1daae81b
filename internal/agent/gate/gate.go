// Package gate связывает представления агента с сессией.
//
// Gate при создании начинает разрешать текущего пользователя через
// session.Cache и не более одного раза переходит из StateUnresolved в
// StateResolved или StateFailed. Если контекст создателя отменён раньше,
// чем пришёл ответ, Gate остаётся в StateUnresolved: отмена означает, что
// результат больше никому не нужен, а не что пользователя нет.
// Представления держат Gate и опрашивают его состояние, а не наследуются от него.
//
// Mandatory — Gate, который после разрешения либо становится готовым,
// либо один раз уводит пользователя на страницу входа.
package gate

import (
	"context"
	"errors"
	"sync"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/kvstore"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/prefs"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/session"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// State — состояние разрешения сессии.
type State int

const (
	// StateUnresolved — запрос пользователя ещё не завершён.
	StateUnresolved State = iota
	// StateResolved — пользователь получен.
	StateResolved
	// StateFailed — пользователя нет (ошибка запроса или пустой uuid).
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option настраивает Gate.
type Option func(*options)

type options struct {
	force     bool
	onResolve []func(models.User, bool)
}

// WithForce заставляет Gate запросить пользователя заново, минуя кэш.
func WithForce() Option {
	return func(o *options) { o.force = true }
}

func withResolveHook(fn func(models.User, bool)) Option {
	return func(o *options) { o.onResolve = append(o.onResolve, fn) }
}

// Gate — разрешение сессии для одного представления.
type Gate struct {
	cache *session.Cache
	prefs *prefs.Manager

	mu    sync.RWMutex
	state State
	user  *models.User
	err   error

	done chan struct{}
}

// New создаёт Gate и запускает разрешение сессии в отдельной горутине.
//
// Пока разрешение не завершено, User возвращает то, что было в кэше на момент
// создания. Ошибка разрешения не возвращается, а переводит Gate в StateFailed.
func New(ctx context.Context, cache *session.Cache, store kvstore.Store[models.Preferences], opts ...Option) *Gate {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	g := &Gate{
		cache: cache,
		state: StateUnresolved,
		done:  make(chan struct{}),
	}
	if u, ok := cache.Cached(); ok {
		g.user = &u
	}
	g.prefs = prefs.NewManager(store, g.User)

	go g.resolve(ctx, o)

	return g
}

func (g *Gate) resolve(ctx context.Context, o options) {
	u, err := g.cache.GetUser(ctx, o.force)

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		g.mu.Lock()
		g.err = err
		g.mu.Unlock()
		close(g.done)
		return
	}

	g.mu.Lock()
	if err != nil {
		g.state = StateFailed
		g.user = nil
		g.err = err
	} else {
		g.state = StateResolved
		g.user = &u
	}
	g.mu.Unlock()

	user, ok := g.User()
	for _, fn := range o.onResolve {
		fn(user, ok)
	}

	close(g.done)
}

// State возвращает текущее состояние.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.state
}

// User возвращает пользователя, если он известен.
func (g *Gate) User() (models.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.user == nil {
		return models.User{}, false
	}
	return *g.user, true
}

// Err возвращает ошибку разрешения для StateFailed или ошибку контекста,
// если разрешение прервано отменой.
func (g *Gate) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.err
}

// Done закрывается после перехода из StateUnresolved или после отмены
// контекста, переданного в New.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Wait ждёт разрешения сессии и возвращает итоговое состояние.
func (g *Gate) Wait(ctx context.Context) (State, error) {
	select {
	case <-ctx.Done():
		return g.State(), ctx.Err()
	case <-g.done:
		return g.State(), nil
	}
}

// Prefs возвращает настройки пользователя этого Gate.
func (g *Gate) Prefs() *prefs.Manager {
	return g.prefs
}

// Logout завершает сессию через кэш.
func (g *Gate) Logout(ctx context.Context) error {
	return g.cache.Logout(ctx)
}
