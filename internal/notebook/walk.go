package notebook

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// checkpointDir is the Jupyter autosave directory. Notebooks inside it are
// editor artifacts, never user content.
const checkpointDir = ".ipynb_checkpoints"

// Notebooks returns an iterator over every notebook file under root, in
// lexical walk order. Checkpoint directories are pruned at every depth. A
// missing root, or a root that is not a directory, yields an empty sequence.
// Each range over the sequence re-walks the tree.
func Notebooks(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == checkpointDir {
					return fs.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), Ext) {
				return nil
			}
			if !yield(path) {
				return fs.SkipAll
			}
			return nil
		})
	}
}
