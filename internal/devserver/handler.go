// Package devserver — локальная заглушка API админки для разработки агента.
//
// Пакет отвечает за:
//   - таблицу сессий в памяти (токен -> пользователь);
//   - эндпоинты GET /api/v1/user и GET /api/v1/logout;
//   - логирование запросов и отражение X-Request-ID.
//
// Выдачи токенов по HTTP нет: токен выдаётся при старте cmd/devserver.
package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/logger"
)

const (
	ContentType     = "Content-Type"
	JSONContentType = "application/json"
)

// UserResponse — тело ответа GET /api/v1/user.
type UserResponse struct {
	Email string `json:"email"`
	UUID  string `json:"uuid"`
}

// Handler агрегирует зависимости HTTP-слоя devserver.
type Handler struct {
	Sessions *Sessions
	Log      *logger.HTTPLogger
}

// NewHandler создаёт Handler. nil log заменяется на логгер без вывода.
func NewHandler(sessions *Sessions, log *logger.HTTPLogger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Sessions: sessions, Log: log}
}

// User возвращает пользователя текущей сессии.
//
// 401 — нет токена или сессия неизвестна.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	token := ExtractBearer(r.Header.Get("Authorization"))
	if token == "" {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}
	u, ok := h.Sessions.Lookup(token)
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	w.Header().Set(ContentType, JSONContentType)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(UserResponse{Email: u.Email, UUID: u.UUID})
}

// Logout отзывает сессию. Отсутствие сессии не ошибка: выход идемпотентен.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := ExtractBearer(r.Header.Get("Authorization")); token != "" {
		if h.Sessions.Revoke(token) {
			h.Log.Info("session revoked")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
