package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsHidden tests the isHidden function with various path scenarios.
func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		// Hidden files
		{".hidden", ".hidden", true},
		{"path/to/.hidden", "path/to/.hidden", true},
		{"/root/.config/file.txt", "/root/.config/file.txt", true},

		// Hidden directories in path
		{"dir/.git/config", "dir/.git/config", true},
		{"/home/user/.ssh/id_rsa", "/home/user/.ssh/id_rsa", true},

		// Not hidden
		{"file.txt", "file.txt", false},
		{"path/to/file.txt", "path/to/file.txt", false},
		{"normal.file", "normal.file", false},

		// Special cases - . and .. are not considered hidden
		{".", ".", false},
		{"..", "..", false},
		{"path/./file", "path/./file", false},
		{"path/../file", "path/../file", false},

		// Edge cases
		{"", "", false},
		{"/", "/", false},
		{"file.hidden", "file.hidden", false}, // Dot in filename but not prefix
		{"directory.name/file", "directory.name/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isHidden(tt.path)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("missing directory returns error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewWatcher("/nonexistent/path")
		_, err := w.Watch(ctx)
		require.Error(t, err)
	})

	t.Run("delivers created file content", func(t *testing.T) {
		tempDir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewWatcher(tempDir)
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(tempDir, "note.txt")
		require.NoError(t, os.WriteFile(path, []byte("remember this"), 0600))

		select {
		case change := <-changes:
			assert.Equal(t, path, change.Path)
			assert.Equal(t, "remember this", change.Content)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for change")
		}
	})

	t.Run("coalesces rapid writes", func(t *testing.T) {
		tempDir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewWatcher(tempDir)
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(tempDir, "note.txt")
		require.NoError(t, os.WriteFile(path, []byte("draft"), 0600))
		require.NoError(t, os.WriteFile(path, []byte("final"), 0600))

		select {
		case change := <-changes:
			assert.Equal(t, "final", change.Content)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for change")
		}

		// No second delivery for the coalesced burst.
		select {
		case change := <-changes:
			t.Fatalf("unexpected extra change: %+v", change)
		case <-time.After(2 * debounceWindow):
		}
	})

	t.Run("ignores hidden files", func(t *testing.T) {
		tempDir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewWatcher(tempDir)
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		hidden := filepath.Join(tempDir, ".secret")
		visible := filepath.Join(tempDir, "visible.txt")
		require.NoError(t, os.WriteFile(hidden, []byte("nope"), 0600))
		require.NoError(t, os.WriteFile(visible, []byte("yes"), 0600))

		select {
		case change := <-changes:
			assert.Equal(t, visible, change.Path)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for change")
		}
	})

	t.Run("closes channel on cancel", func(t *testing.T) {
		tempDir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())

		w := NewWatcher(tempDir)
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok, "channel should be closed")
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for close")
		}
	})
}
