// Package notebook mines todo items from Jupyter notebooks: marker
// extraction, tree walking, scanning, the TTL-bounded scan cache, and the
// file-system change feed.
package notebook

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nbtodo/nbtodo/internal/models"
)

// Ext is the file suffix identifying notebook documents.
const Ext = ".ipynb"

// markerRe matches a `# TODO:` comment and captures the trailing text. The
// keyword is case-insensitive and whitespace around the colon is free.
var markerRe = regexp.MustCompile(`(?i)#\s*TODO\s*:\s*(.+)`)

// notebookDoc is the minimal shape read out of a notebook file. Cells stays
// raw so a document whose top level parses but whose cells field has an
// unexpected shape degrades to zero results instead of an error.
type notebookDoc struct {
	Cells json.RawMessage `json:"cells"`
}

type notebookCell struct {
	Source json.RawMessage `json:"source"`
}

// ExtractFile parses one notebook and returns a todo for every marker line.
// Failures are soft: an unreadable or malformed document is logged and
// contributes zero todos.
func ExtractFile(notebookPath, rootDir string, logger *slog.Logger) []models.Todo {
	data, err := os.ReadFile(notebookPath)
	if err != nil {
		logger.Warn("notebook: read failed", slog.String("path", notebookPath), slog.String("error", err.Error()))
		return nil
	}

	var doc notebookDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("notebook: parse failed", slog.String("path", notebookPath), slog.String("error", err.Error()))
		return nil
	}

	var cells []notebookCell
	if err := json.Unmarshal(doc.Cells, &cells); err != nil {
		// cells missing or not a list: structurally valid, nothing to mine.
		return nil
	}

	rel := relativePath(notebookPath, rootDir)

	var todos []models.Todo
	for cellIdx, cell := range cells {
		for lineIdx, line := range sourceLines(cell.Source) {
			m := markerRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			text := strings.TrimSpace(m[1])
			if text == "" {
				continue
			}
			todos = append(todos, models.NotebookTodo(rel, cellIdx, lineIdx, text))
		}
	}
	return todos
}

// sourceLines normalizes a cell source field to an ordered list of lines: a
// JSON list of strings yields one line per element (trailing newlines
// stripped), a single string is split on newlines, and any other shape
// yields no lines.
func sourceLines(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		lines := make([]string, len(list))
		for i, l := range list {
			lines[i] = strings.TrimRight(l, "\n")
		}
		return lines
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return splitLines(s)
	}

	return nil
}

// splitLines splits on newlines without emitting a phantom empty line for a
// trailing terminator, mirroring how notebook front-ends join cell source.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// relativePath renders path relative to root using forward slashes. An empty
// root leaves the path unchanged (separators still normalized).
func relativePath(path, root string) string {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
	}
	return filepath.ToSlash(rel)
}
