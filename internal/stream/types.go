package stream

import (
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

// HeaderBuilder produces the device emulation headers the upstream portal
// expects. The gateway treats the result as an opaque header map; the portal
// package supplies the implementation.
type HeaderBuilder func(mac string, referer string, token string) http.Header

type Config struct {
	TmpRoot      string        // workspace root, one directory per stream
	Freshness    time.Duration // playlist age below which a workspace is warm
	ReadyTimeout time.Duration // bounded wait for the first playlist
	SegmentTime  int           // seconds per segment
	ListSize     int           // rolling playlist window

	// PublicBase is prepended to rewritten segment references, so playlists
	// work behind an external hostname. Empty keeps them gateway-relative.
	PublicBase string

	FFmpegBinary string
	Headers      HeaderBuilder

	// CmdFactory overrides transcoder process construction, used in tests.
	CmdFactory func(opts TranscodeOptions) *exec.Cmd
}

func (c Config) withDefaultValues() Config {
	if c.TmpRoot == "" {
		c.TmpRoot = os.TempDir()
	}
	if c.Freshness == 0 {
		c.Freshness = 15 * time.Second
	}
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = 5 * time.Second
	}
	if c.SegmentTime == 0 {
		// 4s segments: quick start, not too many files
		c.SegmentTime = 4
	}
	if c.ListSize == 0 {
		// 14 segments: plenty of buffer for smoothness
		c.ListSize = 14
	}
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = "ffmpeg"
	}
	c.PublicBase = strings.TrimSuffix(c.PublicBase, "/")
	if c.CmdFactory == nil {
		c.CmdFactory = func(opts TranscodeOptions) *exec.Cmd {
			return exec.Command(c.FFmpegBinary, opts.Args()...)
		}
	}
	return c
}

// PlaybackRequest is one playback attempt entering the session manager.
type PlaybackRequest struct {
	URL    string
	Portal string
	MAC    string
	Token  string
}

// SegmentRequest addresses either a locally transcoded segment file or a
// remote segment url embedded by the playlist rewriter.
type SegmentRequest struct {
	StreamID string
	File     string
	URL      string
	Portal   string
	MAC      string
	Token    string
}

type Manager interface {
	Shutdown()

	ServePlaylist(w http.ResponseWriter, r *http.Request, req PlaybackRequest)
	ServeSegment(w http.ResponseWriter, r *http.Request, req SegmentRequest)
}
