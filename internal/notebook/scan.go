package notebook

import (
	"log/slog"

	"github.com/nbtodo/nbtodo/internal/models"
)

// Scanner walks a notebook tree and extracts every marker todo in it.
type Scanner struct {
	root   string
	logger *slog.Logger
}

// NewScanner creates a scanner over the notebook tree rooted at root.
func NewScanner(root string, logger *slog.Logger) *Scanner {
	return &Scanner{root: root, logger: logger}
}

// Scan returns the todos of every notebook under the root, concatenated in
// walk order. Ids never collide across files because each embeds its file's
// root-relative path. A file that fails to parse contributes nothing and
// does not stop the scan.
func (s *Scanner) Scan() []models.Todo {
	var todos []models.Todo
	for path := range Notebooks(s.root) {
		todos = append(todos, ExtractFile(path, s.root, s.logger)...)
	}
	return todos
}
