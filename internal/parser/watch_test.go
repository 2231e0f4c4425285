package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherNotifiesOnNewFile(t *testing.T) {
	dir := t.TempDir()
	events := make(chan string, 4)

	w, err := NewWatcher(dir, func(path string) { events <- path })
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.Start()
	defer w.Stop()

	newFile := filepath.Join(dir, "session.jsonl")
	if err := os.WriteFile(newFile, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	select {
	case got := <-events:
		if got != newFile {
			t.Errorf("expected event for %s, got %s", newFile, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}
