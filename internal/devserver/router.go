package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter создаёт chi-роутер devserver.
//
// Регистрирует:
//   - middleware логирования и X-Request-ID для всех запросов;
//   - GET /api/v1/user и GET /api/v1/logout.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggerMiddleware(h.Log))
	r.Use(RequestIDMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/user", h.User)
		r.Get("/logout", h.Logout)
	})
	return r
}
