package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the handler tree. Everything except /api/authorize needs a
// valid session ticket.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/api/authorize", s.authorize)

	r.Group(func(auth chi.Router) {
		auth.Use(s.sessionMiddleware)

		auth.Get("/api/users", s.getUsers)
		auth.Post("/api/users", s.postUsers)

		auth.Get("/api/memories", s.getMemories)
		auth.Post("/api/memories", s.postMemories)

		auth.Post("/api/upload", s.upload)

		auth.Group(func(admin chi.Router) {
			admin.Use(adminOnly)
			admin.Get("/api/emailserver", s.getEmailServer)
			admin.Post("/api/emailserver", s.postEmailServer)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	})

	return r
}
