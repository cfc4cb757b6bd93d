package notebook

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each notebook change seen on disk.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the notebook root and reports file
// change events until ctx is cancelled. It calls cb (if non-nil) with
// root-relative paths.
//
// The watcher is purely advisory: it feeds change notifications to clients
// and never touches the scan cache, whose freshness is governed by its TTL
// alone. New directories created at runtime are automatically added to the
// watch list. Checkpoint directories are never watched, so autosave churn
// stays silent.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if filepath.Base(absPath) == checkpointDir {
						continue
					}
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Report notebooks already inside the new directory,
					// e.g. a folder moved in from outside the tree.
					reportNewDir(root, absPath, logger, cb)
					continue
				}
			}

			// Only process notebook files from here on.
			if !strings.HasSuffix(absPath, Ext) {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: notebook changed", slog.String("path", rel), slog.String("op", kind))
				if cb != nil {
					cb(kind, rel)
				}

			case ev.Op&fsnotify.Remove != 0:
				logger.Debug("watcher: notebook deleted", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new path
				// arrives as a separate Create event if it stays within a
				// watched dir, so the old path is reported as deleted here.
				logger.Debug("watcher: notebook renamed away", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reportNewDir reports any notebooks found in a newly created directory.
func reportNewDir(root, dirPath string, logger *slog.Logger, cb EventCallback) {
	for path := range Notebooks(dirPath) {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		logger.Debug("watcher: notebook from new dir", slog.String("path", rel))
		if cb != nil {
			cb("created", rel)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// pruning checkpoint directories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == checkpointDir {
			return fs.SkipDir
		}
		return w.Add(path)
	})
}
