package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nbtodo/nbtodo/internal/apperr"
	"github.com/nbtodo/nbtodo/internal/models"
	"github.com/nbtodo/nbtodo/internal/todoservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *todoservice.Service
	notify Notifier
}

// NewHandler creates a new Handler.
func NewHandler(svc *todoservice.Service, notify Notifier) *Handler {
	return &Handler{svc: svc, notify: notify}
}

// itemID extracts the todo id from the URL. Notebook ids carry ':' and '/',
// so encoded ids from clients are unescaped (e.g. notebook%3Aa.ipynb%3A0%3A1).
func itemID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func (h *Handler) publishUpdated() {
	if h.notify != nil {
		h.notify.PublishItemsUpdated()
	}
}

// ListTodos handles GET /api/todos.
//
//	@Summary		List todos, manual items first, then notebook-mined items
//	@Tags			todos
//	@Produce		json
//	@Param			include_notebooks	query		bool	false	"Include notebook-mined items (default true)"
//	@Success		200					{object}	ItemsResponse
//	@Security		BearerAuth
//	@Router			/todos [get]
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	includeNotebooks := true
	if raw := r.URL.Query().Get("include_notebooks"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			includeNotebooks = v
		}
	}

	items := h.svc.Items(r.Context(), includeNotebooks)
	w.Header().Set("ETag", `"`+h.svc.CollectionChecksum(r.Context())+`"`)
	writeJSON(w, http.StatusOK, ItemsResponse{Items: items})
}

// ReplaceTodos handles PUT /api/todos.
//
//	@Summary		Replace the manual collection
//	@Tags			todos
//	@Accept			json
//	@Param			If-Match	header	string				false	"Manual collection checksum for optimistic concurrency"
//	@Param			body		body	ReplaceTodosRequest	true	"New collection"
//	@Success		204			"Collection replaced"
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos [put]
func (h *Handler) ReplaceTodos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	items, ok := decodeItemsPayload(body)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("items must be a list"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	if err := h.svc.SaveItems(r.Context(), items, ifMatch); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		} else {
			slog.Error("replace todos failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishUpdated()
	w.WriteHeader(http.StatusNoContent)
}

// decodeItemsPayload accepts {"items":[...]} or a bare top-level array, the
// same shapes the file store tolerates. A payload whose item list is
// missing, null, or not an array is rejected.
func decodeItemsPayload(body []byte) ([]models.Todo, bool) {
	var doc struct {
		Items *[]models.Todo `json:"items"`
	}
	if err := json.Unmarshal(body, &doc); err == nil {
		if doc.Items == nil {
			return nil, false
		}
		return *doc.Items, true
	}
	var items []models.Todo
	if err := json.Unmarshal(body, &items); err == nil && items != nil {
		return items, true
	}
	return nil, false
}

// CreateTodo handles POST /api/todos.
//
//	@Summary		Add a manual todo
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTodoRequest	true	"Todo to add"
//	@Success		201		{object}	Todo
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos [post]
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := readJSON(w, r, &req, 1<<20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}

	item, err := h.svc.AddItem(r.Context(), text)
	if err != nil {
		slog.Error("create todo failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishUpdated()
	writeJSON(w, http.StatusCreated, item)
}

// UpdateTodo handles PATCH /api/todos/{id}.
//
//	@Summary		Patch a manual todo's text or done flag
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Todo id"
//	@Param			body	body		UpdateTodoRequest	true	"Fields to change"
//	@Success		200		{object}	Todo
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/{id} [patch]
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	var req UpdateTodoRequest
	if err := readJSON(w, r, &req, 1<<20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == nil && req.Done == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("nothing to update"))
		return
	}
	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text must not be empty"))
		return
	}

	id := itemID(r)
	item, err := h.svc.UpdateItem(r.Context(), id, todoservice.ItemPatch{Text: req.Text, Done: req.Done})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update todo failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishUpdated()
	writeJSON(w, http.StatusOK, item)
}

// DeleteTodo handles DELETE /api/todos/{id}.
//
//	@Summary		Delete a manual todo
//	@Tags			todos
//	@Param			id	path	string	true	"Todo id"
//	@Success		204	"Todo deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/{id} [delete]
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)
	if err := h.svc.RemoveItem(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete todo failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishUpdated()
	w.WriteHeader(http.StatusNoContent)
}
