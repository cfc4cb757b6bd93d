// Package testutil provides shared test helpers for setting up notebook
// trees and todo stores.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nbtodo/nbtodo/internal/storage"
)

// TestFileStore creates a todo file store backed by a temp directory that is
// automatically cleaned up.
func TestFileStore(t *testing.T) storage.Provider {
	t.Helper()
	store, err := storage.NewFile(filepath.Join(t.TempDir(), "todos.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// TestSQLiteStore creates a temporary SQLite todo store that is automatically
// cleaned up.
func TestSQLiteStore(t *testing.T) storage.Provider {
	t.Helper()
	dbFile, err := os.CreateTemp("", "nbtodo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := storage.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// WriteNotebook writes a minimal nbformat notebook at rel under root. Each
// source becomes one code cell; a string source is stored as-is, a []string
// as the usual line list.
func WriteNotebook(t *testing.T, root, rel string, sources ...any) string {
	t.Helper()

	cells := make([]map[string]any, 0, len(sources))
	for _, src := range sources {
		cells = append(cells, map[string]any{
			"cell_type": "code",
			"source":    src,
			"metadata":  map[string]any{},
			"outputs":   []any{},
		})
	}
	doc := map[string]any{
		"nbformat":       4,
		"nbformat_minor": 5,
		"metadata":       map[string]any{},
		"cells":          cells,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
