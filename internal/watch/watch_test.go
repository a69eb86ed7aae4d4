package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func start(t *testing.T, path string, onChange func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- File(ctx, path, 20*time.Millisecond, log.New(io.Discard), onChange) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("File() = %v", err)
		}
	})
	// Let the watcher register before the test writes.
	time.Sleep(100 * time.Millisecond)
}

func TestFile_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.toml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 10)
	start(t, path, func() { changed <- struct{}{} })

	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestFile_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.toml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	start(t, path, func() { calls.Add(1) })

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("onChange called %d times for a sibling file", n)
	}
}

func TestFile_MissingDir(t *testing.T) {
	err := File(context.Background(), filepath.Join(t.TempDir(), "nope", "map.toml"), DefaultDebounce, log.New(io.Discard), func() {})
	if err == nil {
		t.Error("File() on a missing directory should fail")
	}
}
