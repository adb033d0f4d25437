// Package api implements the postdex HTTP surface using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postdex/internal/postservice"
)

// NewRouter creates a chi router with every public route mounted.
// events, if non-nil, is mounted at GET /api/events.
func NewRouter(svc *postservice.Service, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/", h.Status)
	r.Get("/index.json", h.Index)

	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", h.Index)
		r.Get("/refresh", h.Refresh)
		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	r.Get("/posts/", h.ListPosts)
	r.Get("/posts/*", h.GetPost)

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
