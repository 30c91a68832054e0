package stream

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const workspacePrefix = "hls_"

const playlistName = "index.m3u8"

const segmentPattern = "segment_%03d.ts"

// Workspace is the on-disk home of one stream: a single playlist file and a
// rolling set of segments, all under <tmp root>/hls_<id>.
type Workspace struct {
	ID   string
	Root string
}

func NewWorkspace(tmpRoot string, id string) Workspace {
	return Workspace{
		ID:   id,
		Root: path.Join(tmpRoot, workspacePrefix+id),
	}
}

func (w Workspace) PlaylistPath() string {
	return path.Join(w.Root, playlistName)
}

func (w Workspace) SegmentPattern() string {
	return path.Join(w.Root, segmentPattern)
}

func (w Workspace) SegmentPath(name string) string {
	// refuse anything that could escape the workspace
	return path.Join(w.Root, path.Base(name))
}

func (w Workspace) Ensure() error {
	return os.MkdirAll(w.Root, 0755)
}

// Fresh reports whether the playlist file exists and was written within the
// given window. A fresh playlist is served as-is instead of relaunching the
// transcoder on every client poll.
func (w Workspace) Fresh(window time.Duration) bool {
	info, err := os.Stat(w.PlaylistPath())
	if err != nil {
		return false
	}

	return time.Since(info.ModTime()) < window
}

// WipeArtifacts removes playlist and segment files from a previous run so a
// half-written generation cannot be served alongside a new one. The
// directory itself is kept.
func (w Workspace) WipeArtifacts() error {
	entries, err := os.ReadDir(w.Root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".ts") && !strings.HasSuffix(name, ".m3u8") {
			continue
		}

		if err := os.Remove(filepath.Join(w.Root, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}
