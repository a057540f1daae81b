package devserver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// Sessions — таблица активных сессий: токен -> пользователь.
//
// Живёт в памяти процесса и теряется при перезапуске.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]models.User
}

// NewSessions создаёт пустую таблицу сессий.
func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]models.User)}
}

// Issue выдаёт новый токен для пользователя.
//
// Пустой UUID пользователя заменяется сгенерированным.
func (s *Sessions) Issue(u models.User) (string, models.User, error) {
	if strings.TrimSpace(u.Email) == "" {
		return "", models.User{}, fmt.Errorf("%w: email is empty", serr.ErrInvalidInput)
	}
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = u
	s.mu.Unlock()
	return token, u, nil
}

// Lookup возвращает пользователя по токену.
func (s *Sessions) Lookup(token string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.tokens[token]
	return u, ok
}

// Revoke удаляет токен. Возвращает false, если токена не было.
func (s *Sessions) Revoke(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; !ok {
		return false
	}
	delete(s.tokens, token)
	return true
}

// Len возвращает число активных сессий.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
