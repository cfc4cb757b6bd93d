package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nbtodo/nbtodo/internal/models"
)

// fileDoc is the on-disk shape of the collection.
type fileDoc struct {
	Items []models.Todo `json:"items"`
}

// File implements Provider backed by a single JSON document on the local
// file system.
type File struct {
	path string // absolute path to the collection file
}

var _ Provider = (*File)(nil)

// NewFile creates a file provider at the given path. The file does not have
// to exist yet; its directory is created on first write.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	return &File{path: abs}, nil
}

// ReadItems loads the collection. A missing file reads as an empty
// collection. The canonical layout is {"items": [...]}; a bare array is
// accepted for documents written by hand, and any other valid JSON shape
// reads as empty so stray edits degrade softly. Only unparseable JSON is
// reported as an error.
func (f *File) ReadItems() ([]models.Todo, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	var doc struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		var items []models.Todo
		if json.Unmarshal(doc.Items, &items) == nil {
			return items, nil
		}
		return nil, nil
	}

	var items []models.Todo
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	// Distinguish a wrong shape from a document that is not JSON at all.
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", f.path, err)
	}
	return nil, nil
}

// WriteItems atomically replaces the collection: tmp file → fsync → rename.
func (f *File) WriteItems(items []models.Todo) error {
	if items == nil {
		items = []models.Todo{}
	}
	data, err := json.MarshalIndent(fileDoc{Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode items: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".nbtodo-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op for the file backend.
func (f *File) Close() error { return nil }
