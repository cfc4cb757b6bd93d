package notebook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(kind, path string) {
	l.mu.Lock()
	l.events = append(l.events, kind+":"+path)
	l.mu.Unlock()
}

func (l *eventLog) contains(want string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e == want {
			return true
		}
	}
	return false
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func startWatch(t *testing.T, root string) *eventLog {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := &eventLog{}
	go Watch(ctx, root, testLogger(), log.record)
	time.Sleep(100 * time.Millisecond)
	return log
}

func TestWatch_ReportsCreatedNotebook(t *testing.T) {
	dir := t.TempDir()
	log := startWatch(t, dir)

	writeNotebook(t, filepath.Join(dir, "new.ipynb"), []string{"# TODO: fresh\n"})

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.contains("created:new.ipynb")
	}, "expected created:new.ipynb event")
}

func TestWatch_ReportsDeletedNotebook(t *testing.T) {
	dir := t.TempDir()
	writeNotebook(t, filepath.Join(dir, "gone.ipynb"), []string{"x\n"})
	log := startWatch(t, dir)

	if err := os.Remove(filepath.Join(dir, "gone.ipynb")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.contains("deleted:gone.ipynb")
	}, "expected deleted:gone.ipynb event")
}

func TestWatch_RenameReportsBothPaths(t *testing.T) {
	dir := t.TempDir()
	writeNotebook(t, filepath.Join(dir, "old.ipynb"), []string{"x\n"})
	log := startWatch(t, dir)

	if err := os.Rename(filepath.Join(dir, "old.ipynb"), filepath.Join(dir, "renamed.ipynb")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.contains("deleted:old.ipynb") && log.contains("created:renamed.ipynb")
	}, "expected deleted:old.ipynb and created:renamed.ipynb events")
}

func TestWatch_NewDirIsWatched(t *testing.T) {
	dir := t.TempDir()
	log := startWatch(t, dir)

	subDir := filepath.Join(dir, "experiments")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	writeNotebook(t, filepath.Join(subDir, "deep.ipynb"), []string{"x\n"})

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.contains("created:experiments/deep.ipynb")
	}, "expected event for notebook in newly created dir")
}

func TestWatch_IgnoresCheckpointsAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, checkpointDir), 0o755); err != nil {
		t.Fatal(err)
	}
	log := startWatch(t, dir)

	writeNotebook(t, filepath.Join(dir, checkpointDir, "auto.ipynb"), []string{"x\n"})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeNotebook(t, filepath.Join(dir, "real.ipynb"), []string{"x\n"})

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.contains("created:real.ipynb")
	}, "expected created:real.ipynb event")

	for _, e := range log.snapshot() {
		if strings.Contains(e, "checkpoints") {
			t.Errorf("checkpoint activity leaked into events: %v", e)
		}
		if strings.Contains(e, "notes.txt") {
			t.Errorf("non-notebook file leaked into events: %v", e)
		}
	}
}
