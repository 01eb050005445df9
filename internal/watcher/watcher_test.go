package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherFiresOnChange(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w, err := New([]string{dir}, 50*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "item.plist"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire after change")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 16)

	w, err := New([]string{dir}, 200*time.Millisecond, func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.Start()
	defer w.Stop()

	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "burst.plist")
		if err := os.WriteFile(path, []byte{byte(i)}, 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire after burst")
	}
	// The burst settles into one run; allow the window to pass and
	// check no second run queued up.
	time.Sleep(400 * time.Millisecond)
	if len(fired) != 0 {
		t.Errorf("expected a single debounced run, got %d extra", len(fired))
	}
}

func TestNewRejectsNilCallback(t *testing.T) {
	if _, err := New([]string{t.TempDir()}, time.Second, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
