// Package prefs хранит локальные настройки текущего пользователя.
//
// Запись настроек одна на пользователя и лежит в kvstore под ключом
// "user-<uuid>". Если пользователь неизвестен, все операции ничего не делают
// и возвращают "нет значения" — это не ошибка.
package prefs

import (
	"sync"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/kvstore"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// KeyPrefix — префикс ключа записи настроек.
const KeyPrefix = "user-"

// UserFunc возвращает текущего пользователя, если он известен.
type UserFunc func() (models.User, bool)

// StorageKey возвращает ключ записи настроек пользователя.
func StorageKey(u models.User) string {
	return KeyPrefix + u.UUID
}

// Manager читает и пишет настройки пользователя, которого возвращает UserFunc.
//
// Чтение-изменение-запись сериализуются мьютексом менеджера. Два менеджера над
// одним Store пишут независимо, последняя запись побеждает.
type Manager struct {
	store kvstore.Store[models.Preferences]
	user  UserFunc

	mu sync.Mutex
}

// NewManager создаёт Manager.
func NewManager(store kvstore.Store[models.Preferences], user UserFunc) *Manager {
	return &Manager{store: store, user: user}
}

// currentUser возвращает пользователя, только если у него есть uuid.
func (m *Manager) currentUser() (models.User, bool) {
	if m.user == nil {
		return models.User{}, false
	}
	u, ok := m.user()
	if !ok || !u.Valid() {
		return models.User{}, false
	}
	return u, true
}

// StorageKey возвращает ключ записи текущего пользователя.
func (m *Manager) StorageKey() (string, bool) {
	u, ok := m.currentUser()
	if !ok {
		return "", false
	}
	return StorageKey(u), true
}

// Preferences возвращает запись настроек текущего пользователя.
//
// Если записи нет, записывает и возвращает models.DefaultPreferences().
func (m *Manager) Preferences() (models.Preferences, bool) {
	key, ok := m.StorageKey()
	if !ok {
		return models.Preferences{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(key), true
}

// load читает запись или лениво создаёт её. Вызывается под m.mu.
func (m *Manager) load(key string) models.Preferences {
	p, ok := m.store.Get(key)
	if !ok {
		p = models.DefaultPreferences()
		m.store.Set(key, p)
	}
	return p
}

// update выполняет чтение-изменение-запись.
func (m *Manager) update(fn func(*models.Preferences) error) (bool, error) {
	key, ok := m.StorageKey()
	if !ok {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.load(key)
	if err := fn(&p); err != nil {
		return false, err
	}
	m.store.Set(key, p)
	return true, nil
}

// Get возвращает значение настройки k. false — пользователь неизвестен.
func Get[T any](m *Manager, k Key[T]) (T, bool) {
	p, ok := m.Preferences()
	if !ok {
		var zero T
		return zero, false
	}
	return k.get(p), true
}

// Set записывает значение настройки k. false — пользователь неизвестен,
// хранилище не тронуто.
func Set[T any](m *Manager, k Key[T], v T) bool {
	ok, _ := m.update(func(p *models.Preferences) error {
		k.set(p, v)
		return nil
	})
	return ok
}

// Pref возвращает значение настройки по имени.
//
// false — пользователь неизвестен или имя не зарегистрировано.
func (m *Manager) Pref(name string) (any, bool) {
	f, ok := Lookup(name)
	if !ok {
		return nil, false
	}
	p, ok := m.Preferences()
	if !ok {
		return nil, false
	}
	return f.value(p), true
}

// SetPref разбирает raw и записывает настройку по имени.
//
// Если пользователь неизвестен — ничего не делает и возвращает nil.
// Неизвестное имя — serr.ErrUnknownPreference, неразбираемое значение —
// serr.ErrInvalidInput.
func (m *Manager) SetPref(name, raw string) error {
	f, ok := Lookup(name)
	if !ok {
		return unknown(name)
	}
	_, err := m.update(func(p *models.Preferences) error {
		return f.parseInto(p, raw)
	})
	return err
}
