package stream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	root := t.TempDir()

	makeDir := func(name string, age time.Duration) string {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0755))

		if age > 0 {
			stamp := time.Now().Add(-age)
			require.NoError(t, os.Chtimes(dir, stamp, stamp))
		}

		return dir
	}

	expired := makeDir("hls_expired", 2*time.Hour)
	active := makeDir("hls_active", 0)
	foreign := makeDir("other_dir", 2*time.Hour)

	s := NewSweeper(root, 10*time.Minute, time.Hour, nil)
	s.Sweep()

	assert.NoDirExists(t, expired, "expired workspace must be removed")
	assert.DirExists(t, active, "recently touched workspace must be kept")
	assert.DirExists(t, foreign, "unrelated directories must be left alone")
}

func TestSweepReportsRemovedStreams(t *testing.T) {
	root := t.TempDir()

	dir := filepath.Join(root, "hls_abc123")
	require.NoError(t, os.MkdirAll(dir, 0755))
	stamp := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(dir, stamp, stamp))

	var removed []string
	s := NewSweeper(root, 10*time.Minute, time.Hour, func(streamID string) {
		removed = append(removed, streamID)
	})
	s.Sweep()

	assert.Equal(t, []string{"abc123"}, removed, "removal callback must carry the bare stream id")
}

func TestSweepMissingRoot(t *testing.T) {
	s := NewSweeper(filepath.Join(t.TempDir(), "missing"), time.Minute, time.Hour, nil)

	// a failing listing must not panic, the next run will retry
	s.Sweep()
}

func TestSweeperSchedule(t *testing.T) {
	root := t.TempDir()

	dir := filepath.Join(root, "hls_expired")
	require.NoError(t, os.MkdirAll(dir, 0755))
	stamp := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(dir, stamp, stamp))

	s := NewSweeper(root, time.Minute, time.Second, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(dir)
		return os.IsNotExist(err)
	}, 5*time.Second, 100*time.Millisecond, "scheduled sweep must remove the expired workspace")
}
