// Package kvstore содержит абстракцию локального key/value хранилища агента.
//
// Store[V] параметризован типом хранимого значения, поэтому структура записи
// проверяется компилятором. Есть два варианта:
//   - Memory — in-memory map, данные живут до конца процесса;
//   - Persistent — значения сериализуются в JSON и пишутся в Backend
//     (файл или Redis). Ошибки Backend не выходят наружу: значение
//     обслуживается из in-memory копии, а ошибка пишется в лог.
//
// Вариант выбирается при старте через Open.
package kvstore

import "sync"

// Store — хранилище значений типа V по строковому ключу.
//
// Get возвращает значение и true, если ключ есть.
// Set заменяет значение целиком.
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

// Memory — потокобезопасное in-memory хранилище.
//
// Используется, когда постоянное хранилище отключено или недоступно,
// а также как теневая копия внутри Persistent.
type Memory[V any] struct {
	mu   sync.RWMutex
	data map[string]V
}

// NewMemory создаёт пустое in-memory хранилище.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		data: make(map[string]V),
	}
}

// Get возвращает значение по ключу.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok
}

// Set сохраняет значение по ключу.
func (m *Memory[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
}

// Len возвращает количество ключей.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
