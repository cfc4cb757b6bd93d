// Package models defines the domain types for nbtodo.
package models

import "fmt"

// Todo sources.
const (
	SourceManual   = "manual"
	SourceNotebook = "notebook"
)

// Todo is a single actionable item, either user-authored or mined from a
// notebook cell. Field names match the wire format consumed by clients.
//
// OriginCell and OriginLine are serialized unconditionally: index 0 is a
// meaningful position inside a notebook, not an absent value.
type Todo struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Done       bool   `json:"done"`
	Source     string `json:"source,omitempty"`
	OriginPath string `json:"originPath,omitempty"`
	OriginCell int    `json:"originCell"`
	OriginLine int    `json:"originLine"`
}

// NotebookTodo builds the todo emitted for a marker match inside a notebook.
// The id embeds the relative path and both indices, so re-scanning unchanged
// content always reproduces the same id.
func NotebookTodo(relPath string, cell, line int, text string) Todo {
	return Todo{
		ID:         fmt.Sprintf("notebook:%s:%d:%d", relPath, cell, line),
		Text:       text,
		Done:       false,
		Source:     SourceNotebook,
		OriginPath: relPath,
		OriginCell: cell,
		OriginLine: line,
	}
}

// FromNotebook reports whether the item was mined from a notebook. Such items
// are regenerated on every scan and must never reach the manual store.
func (t Todo) FromNotebook() bool {
	return t.Source == SourceNotebook
}
