// Package session хранит состояние сессии агента: последнего полученного
// пользователя и выход из системы.
//
// Cache не глобальный: его создаёт приложение и передаёт всем, кому нужен
// текущий пользователь. Писать в кэш может только сам Cache — по завершении
// запроса пользователя и после успешного выхода.
//
// Конкурентность:
//   - незафорсированные промахи кэша схлопываются в один запрос (singleflight);
//   - каждый GetUser(ctx, true) делает свой запрос и ничего не отменяет;
//     при гонке нескольких таких запросов в кэше остаётся результат того,
//     который завершился последним (last-write-wins).
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

const (
	// DefaultLogoutDelay — пауза между уведомлением о выходе и перезагрузкой.
	DefaultLogoutDelay = 2 * time.Second
	// LoggedOutMessage — текст уведомления после выхода.
	LoggedOutMessage = "logged out"

	currentUserFlight = "current-user"
)

//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks

// Remote — удалённые вызовы, которые нужны кэшу.
type Remote interface {
	// CurrentUser выполняет запрос "кто я" (GET current-user).
	CurrentUser(ctx context.Context) (models.User, error)
	// Logout завершает сессию на сервере (GET logout).
	Logout(ctx context.Context) error
}

// Notifier показывает пользователю информационное сообщение.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(message string)

// Notify вызывает f(message).
func (f NotifierFunc) Notify(message string) {
	f(message)
}

// Option настраивает Cache.
type Option func(*Cache)

// WithLogger задаёт логгер.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithNotifier задаёт получателя уведомлений.
func WithNotifier(n Notifier) Option {
	return func(c *Cache) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithReload задаёт функцию полной перезагрузки клиента после выхода.
func WithReload(reload func()) Option {
	return func(c *Cache) {
		if reload != nil {
			c.reload = reload
		}
	}
}

// WithLogoutDelay задаёт паузу перед перезагрузкой после выхода.
func WithLogoutDelay(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.logoutDelay = d
		}
	}
}

// Cache — кэш текущего пользователя.
type Cache struct {
	remote      Remote
	log         *zap.Logger
	notifier    Notifier
	reload      func()
	logoutDelay time.Duration

	flight singleflight.Group

	mu   sync.RWMutex
	user *models.User
}

// New создаёт пустой Cache поверх remote.
func New(remote Remote, opts ...Option) *Cache {
	c := &Cache{
		remote:      remote,
		log:         zap.NewNop(),
		notifier:    NotifierFunc(func(string) {}),
		reload:      func() {},
		logoutDelay: DefaultLogoutDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cached возвращает закэшированного пользователя без удалённых вызовов.
func (c *Cache) Cached() (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user == nil {
		return models.User{}, false
	}
	return *c.user, true
}

// GetUser возвращает текущего пользователя.
//
// Если пользователь закэширован и force == false, удалённого вызова нет.
// Иначе выполняется запрос CurrentUser:
//   - успех с непустым uuid — результат кэшируется и возвращается;
//   - ошибка или пустой uuid — кэш очищается, возвращается ошибка,
//     оборачивающая serr.ErrUnauthenticated.
//
// Отмена ctx прерывает только ожидание: сам запрос доводится до конца,
// и его результат попадает в кэш.
func (c *Cache) GetUser(ctx context.Context, force bool) (models.User, error) {
	if !force {
		if u, ok := c.Cached(); ok {
			return u, nil
		}
	}

	fetchCtx := context.WithoutCancel(ctx)

	var ch <-chan singleflight.Result
	if force {
		res := make(chan singleflight.Result, 1)
		go func() {
			u, err := c.fetch(fetchCtx)
			res <- singleflight.Result{Val: u, Err: err}
		}()
		ch = res
	} else {
		ch = c.flight.DoChan(currentUserFlight, func() (any, error) {
			// предыдущий полёт мог завершиться между проверкой кэша и DoChan
			if u, ok := c.Cached(); ok {
				return u, nil
			}
			return c.fetch(fetchCtx)
		})
	}

	select {
	case <-ctx.Done():
		return models.User{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.User{}, res.Err
		}
		return res.Val.(models.User), nil
	}
}

// fetch — единственное место, где кэш заполняется результатом запроса.
func (c *Cache) fetch(ctx context.Context) (models.User, error) {
	u, err := c.remote.CurrentUser(ctx)
	if err != nil {
		c.store(nil)
		c.log.Info("current user fetch failed", zap.Error(err))
		return models.User{}, fmt.Errorf("%w: %v", serr.ErrUnauthenticated, err)
	}
	if !u.Valid() {
		c.store(nil)
		c.log.Info("current user response has no uuid")
		return models.User{}, serr.ErrUnauthenticated
	}

	c.store(&u)
	c.log.Debug("current user cached", zap.String("uuid", u.UUID))
	return u, nil
}

func (c *Cache) store(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.user = u
}

// Logout завершает сессию.
//
// После успешного удалённого вызова кэш очищается, пользователю показывается
// уведомление LoggedOutMessage, затем после паузы logoutDelay вызывается
// перезагрузка. Если ctx отменён во время паузы, перезагрузки не будет и
// возвращается ctx.Err().
//
// При ошибке удалённого вызова ничего не меняется, ошибка возвращается.
func (c *Cache) Logout(ctx context.Context) error {
	if err := c.remote.Logout(ctx); err != nil {
		c.log.Warn("logout request failed", zap.Error(err))
		return fmt.Errorf("logout: %w", err)
	}

	c.store(nil)
	c.notifier.Notify(LoggedOutMessage)

	t := time.NewTimer(c.logoutDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	c.reload()
	return nil
}
