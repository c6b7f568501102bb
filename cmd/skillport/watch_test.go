package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSourceWatcherDebouncesBursts(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	src := filepath.Join(dir, "inbox.cursorrules")
	other := filepath.Join(dir, "unrelated.md")
	require.NoError(t, os.WriteFile(src, []byte("v0"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	handled := make(chan string, 10)

	w := &sourceWatcher{
		Paths:    []string{src},
		Debounce: 100 * time.Millisecond,
		Handle:   func(_ context.Context, path string) { handled <- path },
		Ready:    func() { close(ready) },
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-ready

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(src, []byte("v"+string(rune('1'+i))), 0o644))
	}

	select {
	case path := <-handled:
		assert.Equal(t, src, path)
	case <-time.After(5 * time.Second):
		t.Fatal("change was not handled")
	}

	select {
	case path := <-handled:
		t.Fatalf("burst handled more than once: %s", path)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSourceWatcherMissingDir(t *testing.T) {
	w := &sourceWatcher{
		Paths:    []string{filepath.Join(t.TempDir(), "gone", "x.cursorrules")},
		Debounce: time.Millisecond,
		Handle:   func(context.Context, string) {},
	}
	assert.Error(t, w.Run(context.Background()))
}

func TestGetWatchConfigDebounce(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, NewWatchConfig().Debounce)
	assert.Equal(t, "skills", NewWatchConfig().Import.OutputRoot)
}
