// Package todoservice merges the manual todo collection with notebook-mined
// items and owns every mutation of the manual collection.
package todoservice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nbtodo/nbtodo/internal/apperr"
	"github.com/nbtodo/nbtodo/internal/checksum"
	"github.com/nbtodo/nbtodo/internal/models"
	"github.com/nbtodo/nbtodo/internal/storage"
)

// NotebookSource supplies the current notebook-mined todos.
type NotebookSource interface {
	Items() []models.Todo
}

// ItemPatch is a partial update of one manual item. Nil fields are left
// unchanged.
type ItemPatch struct {
	Text *string
	Done *bool
}

// Service coordinates the manual store and the notebook cache.
type Service struct {
	store     storage.Provider
	notebooks NotebookSource
	logger    *slog.Logger

	// mu serializes read-modify-write cycles on the manual collection.
	mu sync.Mutex
}

// NewService creates a new todo service.
func NewService(store storage.Provider, notebooks NotebookSource, logger *slog.Logger) *Service {
	return &Service{store: store, notebooks: notebooks, logger: logger}
}

// Items returns the merged todo list: manual items first, then notebook
// items. With includeNotebooks false only manual items are returned and the
// notebook cache is never consulted. Items never fails; an unreadable store
// degrades to an empty manual list.
func (s *Service) Items(_ context.Context, includeNotebooks bool) []models.Todo {
	items := s.manualItems()
	if includeNotebooks {
		items = append(items, s.notebooks.Items()...)
	}
	return nonNilSlice(items)
}

// CollectionChecksum returns the checksum of the manual collection as
// currently stored, used for optimistic concurrency.
func (s *Service) CollectionChecksum(_ context.Context) string {
	return checksum.Items(s.manualItems())
}

// SaveItems replaces the manual collection. Items tagged as notebook-mined
// are stripped before persisting: those always regenerate from the next
// scan. A non-empty ifMatch must equal the stored collection's checksum or
// the write is refused with apperr.ErrConflict.
func (s *Service) SaveItems(_ context.Context, items []models.Todo, ifMatch string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ifMatch != "" && ifMatch != checksum.Items(s.manualItems()) {
		return apperr.ErrConflict
	}

	manual := make([]models.Todo, 0, len(items))
	for _, t := range items {
		if t.FromNotebook() {
			continue
		}
		manual = append(manual, t)
	}
	return s.store.WriteItems(manual)
}

// AddItem appends a new manual item with a server-assigned id.
func (s *Service) AddItem(_ context.Context, text string) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.Todo{
		ID:     uuid.NewString(),
		Text:   text,
		Source: models.SourceManual,
	}
	items := append(s.manualItems(), item)
	if err := s.store.WriteItems(items); err != nil {
		return models.Todo{}, err
	}
	return item, nil
}

// UpdateItem applies a partial update to the manual item with the given id.
// Notebook-mined items are not stored, so their ids report
// apperr.ErrNotFound here.
func (s *Service) UpdateItem(_ context.Context, id string, patch ItemPatch) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.manualItems()
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if patch.Text != nil {
			items[i].Text = *patch.Text
		}
		if patch.Done != nil {
			items[i].Done = *patch.Done
		}
		if err := s.store.WriteItems(items); err != nil {
			return models.Todo{}, err
		}
		return items[i], nil
	}
	return models.Todo{}, apperr.ErrNotFound
}

// RemoveItem deletes the manual item with the given id.
func (s *Service) RemoveItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.manualItems()
	for i := range items {
		if items[i].ID != id {
			continue
		}
		return s.store.WriteItems(append(items[:i], items[i+1:]...))
	}
	return apperr.ErrNotFound
}

// manualItems reads the stored collection, dropping any notebook-tagged
// stragglers. Read problems are logged and degrade to an empty list, never
// a failure.
func (s *Service) manualItems() []models.Todo {
	stored, err := s.store.ReadItems()
	if err != nil {
		s.logger.Warn("todoservice: manual store unreadable, using empty list", slog.String("error", err.Error()))
		return nil
	}
	manual := make([]models.Todo, 0, len(stored))
	for _, t := range stored {
		if t.FromNotebook() {
			continue
		}
		manual = append(manual, t)
	}
	return manual
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
