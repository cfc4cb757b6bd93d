// Package storage persists the manual todo collection.
package storage

import "github.com/nbtodo/nbtodo/internal/models"

// Provider is the interface for manual todo persistence. Implementations
// treat the collection as a whole: reads return every item in stored order,
// writes replace the collection.
type Provider interface {
	// ReadItems returns the stored collection. A backend with nothing
	// stored yet returns an empty list, not an error.
	ReadItems() ([]models.Todo, error)
	// WriteItems atomically replaces the stored collection.
	WriteItems(items []models.Todo) error
	// Close releases backend resources.
	Close() error
}
