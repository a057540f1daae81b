package tests

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/kvstore"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/prefs"
	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// countingStore считает обращения к хранилищу
type countingStore struct {
	inner      *kvstore.Memory[models.Preferences]
	gets, sets int
}

func newCountingStore() *countingStore {
	return &countingStore{inner: kvstore.NewMemory[models.Preferences]()}
}

func (s *countingStore) Get(key string) (models.Preferences, bool) {
	s.gets++
	return s.inner.Get(key)
}

func (s *countingStore) Set(key string, v models.Preferences) {
	s.sets++
	s.inner.Set(key, v)
}

// unstableBackend отвечает ошибкой на первое чтение, дальше работает как обычное хранилище.
type unstableBackend struct {
	mu     sync.Mutex
	data   map[string][]byte
	failed bool
}

func (b *unstableBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.failed {
		b.failed = true
		return nil, errors.New("connection reset")
	}
	v, ok := b.data[key]
	if !ok {
		return nil, kvstore.ErrNotFound
	}
	return v, nil
}

func (b *unstableBackend) Save(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
	return nil
}

func (b *unstableBackend) Ping(context.Context) error { return nil }

func userFunc(u models.User) prefs.UserFunc {
	return func() (models.User, bool) { return u, true }
}

func noUser() (models.User, bool) { return models.User{}, false }

func TestStorageKey(t *testing.T) {
	require.Equal(t, "user-abc", prefs.StorageKey(models.User{UUID: "abc"}))

	m := prefs.NewManager(newCountingStore(), userFunc(models.User{UUID: "abc"}))
	key, ok := m.StorageKey()
	require.True(t, ok)
	require.Equal(t, "user-abc", key)

	_, ok = prefs.NewManager(newCountingStore(), noUser).StorageKey()
	require.False(t, ok)
}

// первая запись создаётся лениво и сохраняется
func TestManager_Preferences_DefaultPersisted(t *testing.T) {
	store := newCountingStore()
	m := prefs.NewManager(store, userFunc(models.User{Email: "a@b.com", UUID: "u1"}))

	p, ok := m.Preferences()
	require.True(t, ok)
	require.Equal(t, models.Preferences{HideMenu: false}, p)

	stored, ok := store.inner.Get("user-u1")
	require.True(t, ok)
	require.Equal(t, models.Preferences{HideMenu: false}, stored)
	require.Equal(t, 1, store.sets)

	// повторное чтение не пишет
	_, _ = m.Preferences()
	require.Equal(t, 1, store.sets)
}

func TestManager_SetGet_RoundTrip(t *testing.T) {
	store := newCountingStore()
	m := prefs.NewManager(store, userFunc(models.User{UUID: "u1"}))

	require.True(t, prefs.Set(m, prefs.HideMenu, true))

	v, ok := prefs.Get(m, prefs.HideMenu)
	require.True(t, ok)
	require.True(t, v)

	stored, ok := store.inner.Get("user-u1")
	require.True(t, ok)
	require.Equal(t, models.Preferences{HideMenu: true}, stored)
}

// без пользователя — ни ошибок, ни обращений к хранилищу
func TestManager_NoUser_IsNoop(t *testing.T) {
	store := newCountingStore()
	m := prefs.NewManager(store, noUser)

	v, ok := prefs.Get(m, prefs.HideMenu)
	require.False(t, ok)
	require.False(t, v)

	require.False(t, prefs.Set(m, prefs.HideMenu, true))

	_, ok = m.Pref("hideMenu")
	require.False(t, ok)
	require.NoError(t, m.SetPref("hideMenu", "true"))

	_, ok = m.Preferences()
	require.False(t, ok)

	require.Zero(t, store.gets)
	require.Zero(t, store.sets)
}

func TestManager_UserWithoutUUID_IsNoop(t *testing.T) {
	store := newCountingStore()
	m := prefs.NewManager(store, userFunc(models.User{Email: "a@b.com"}))

	require.False(t, prefs.Set(m, prefs.HideMenu, true))
	require.Zero(t, store.sets)
}

func TestManager_NilUserFunc_IsNoop(t *testing.T) {
	m := prefs.NewManager(newCountingStore(), nil)

	_, ok := m.Preferences()
	require.False(t, ok)
}

func TestManager_PrefByName(t *testing.T) {
	m := prefs.NewManager(newCountingStore(), userFunc(models.User{UUID: "u1"}))

	require.NoError(t, m.SetPref("hideMenu", "true"))

	v, ok := m.Pref("hideMenu")
	require.True(t, ok)
	require.Equal(t, true, v)

	_, ok = m.Pref("nope")
	require.False(t, ok)
}

func TestManager_SetPref_Errors(t *testing.T) {
	store := newCountingStore()
	m := prefs.NewManager(store, userFunc(models.User{UUID: "u1"}))

	err := m.SetPref("nope", "true")
	require.ErrorIs(t, err, serr.ErrUnknownPreference)

	err = m.SetPref("hideMenu", "maybe")
	require.ErrorIs(t, err, serr.ErrInvalidInput)

	// запись не тронута, кроме ленивой инициализации
	stored, ok := store.inner.Get("user-u1")
	require.True(t, ok)
	require.False(t, stored.HideMenu)
}

func TestManager_UsersAreIsolated(t *testing.T) {
	store := kvstore.NewMemory[models.Preferences]()
	alice := prefs.NewManager(store, userFunc(models.User{UUID: "alice"}))
	bob := prefs.NewManager(store, userFunc(models.User{UUID: "bob"}))

	require.True(t, prefs.Set(alice, prefs.HideMenu, true))

	v, ok := prefs.Get(bob, prefs.HideMenu)
	require.True(t, ok)
	require.False(t, v)
}

// настройки переживают перезапуск при файловом хранилище
func TestManager_FileBackedStore_PersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	u := userFunc(models.User{UUID: "u1"})

	first := prefs.NewManager(kvstore.NewPersistent[models.Preferences](kvstore.NewFileBackend(path), nil, 0), u)
	require.True(t, prefs.Set(first, prefs.HideMenu, true))

	second := prefs.NewManager(kvstore.NewPersistent[models.Preferences](kvstore.NewFileBackend(path), nil, 0), u)
	v, ok := prefs.Get(second, prefs.HideMenu)
	require.True(t, ok)
	require.True(t, v)
}

// сбой чтения не должен затирать сохранённые настройки значениями по умолчанию
func TestManager_FailedRead_KeepsStoredPreferences(t *testing.T) {
	backend := &unstableBackend{data: map[string][]byte{"user-u1": []byte(`{"hideMenu":true}`)}}
	m := prefs.NewManager(kvstore.NewPersistent[models.Preferences](backend, nil, 0), userFunc(models.User{UUID: "u1"}))

	p, ok := m.Preferences()
	require.True(t, ok)
	require.False(t, p.HideMenu)

	backend.mu.Lock()
	raw := string(backend.data["user-u1"])
	backend.mu.Unlock()
	require.JSONEq(t, `{"hideMenu":true}`, raw)

	p, ok = m.Preferences()
	require.True(t, ok)
	require.True(t, p.HideMenu)
}

func TestNames(t *testing.T) {
	require.Equal(t, []string{"hideMenu"}, prefs.Names())

	f, ok := prefs.Lookup("hideMenu")
	require.True(t, ok)
	require.Equal(t, "hideMenu", f.Name())
}
