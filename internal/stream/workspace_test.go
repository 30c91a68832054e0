package stream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace(t *testing.T) {
	t.Run("fresh within window", func(t *testing.T) {
		ws := NewWorkspace(t.TempDir(), "abc")
		require.NoError(t, ws.Ensure())
		require.NoError(t, os.WriteFile(ws.PlaylistPath(), []byte("#EXTM3U\n"), 0644))

		assert.True(t, ws.Fresh(time.Minute))
	})

	t.Run("stale outside window", func(t *testing.T) {
		ws := NewWorkspace(t.TempDir(), "abc")
		require.NoError(t, ws.Ensure())
		require.NoError(t, os.WriteFile(ws.PlaylistPath(), []byte("#EXTM3U\n"), 0644))

		old := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(ws.PlaylistPath(), old, old))

		assert.False(t, ws.Fresh(time.Minute))
	})

	t.Run("missing playlist is never fresh", func(t *testing.T) {
		ws := NewWorkspace(t.TempDir(), "abc")
		require.NoError(t, ws.Ensure())

		assert.False(t, ws.Fresh(time.Minute))
	})

	t.Run("wipe removes artifacts but keeps the directory", func(t *testing.T) {
		ws := NewWorkspace(t.TempDir(), "abc")
		require.NoError(t, ws.Ensure())

		require.NoError(t, os.WriteFile(ws.PlaylistPath(), []byte("#EXTM3U\n"), 0644))
		require.NoError(t, os.WriteFile(ws.SegmentPath("segment_000.ts"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "notes.txt"), []byte("x"), 0644))

		require.NoError(t, ws.WipeArtifacts())

		assert.NoFileExists(t, ws.PlaylistPath())
		assert.NoFileExists(t, ws.SegmentPath("segment_000.ts"))
		assert.FileExists(t, filepath.Join(ws.Root, "notes.txt"))
		assert.DirExists(t, ws.Root)
	})

	t.Run("segment path never escapes the workspace", func(t *testing.T) {
		ws := NewWorkspace(t.TempDir(), "abc")

		assert.Equal(t, ws.SegmentPath("segment_001.ts"), ws.SegmentPath("../../segment_001.ts"))
	})
}
