package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nbtodo/nbtodo/internal/todoservice"
)

// Notifier broadcasts collection updates to connected clients.
type Notifier interface {
	PublishItemsUpdated()
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// notify, if non-nil, is told about successful manual-collection writes.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *todoservice.Service, notify Notifier, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, notify)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Todo collection.
	r.Get("/todos", h.ListTodos)
	r.Put("/todos", h.ReplaceTodos)
	r.Post("/todos", h.CreateTodo)
	r.Patch("/todos/{id}", h.UpdateTodo)
	r.Delete("/todos/{id}", h.DeleteTodo)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
