package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// fallback poll interval while waiting for the first playlist
const readyPollInterval = 100 * time.Millisecond

const playlistContentType = "application/vnd.apple.mpegurl"

const segmentContentType = "video/mp2t"

// hls clients treat an empty playlist as "not ready yet" and keep polling,
// which degrades better than a broken response
const emptyPlaylist = "#EXTM3U\n"

var ErrNotReady = errors.New("playlist not ready")

// session serializes the check-freshness/wipe/launch decision for one
// fingerprint, so two concurrent cold requests cannot spawn competing
// transcoders against the same workspace.
type session struct {
	mu      sync.Mutex
	process *Process
}

type ManagerCtx struct {
	logger    zerolog.Logger
	config    Config
	admission *AdmissionCtx

	// playlist fetches are small and bounded, segment bodies are not
	playlistClient *http.Client
	segmentClient  *http.Client

	sessions   map[string]*session
	sessionsMu sync.Mutex
}

func New(config Config, admission *AdmissionCtx) *ManagerCtx {
	return &ManagerCtx{
		logger:    log.With().Str("module", "stream").Str("submodule", "manager").Logger(),
		config:    config.withDefaultValues(),
		admission: admission,

		playlistClient: &http.Client{Timeout: 10 * time.Second},
		segmentClient:  &http.Client{},

		sessions: map[string]*session{},
	}
}

func (m *ManagerCtx) session(id string) *session {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &session{}
		m.sessions[id] = s
	}

	return s
}

// Evict drops the session entry for a stream whose workspace is gone, so the
// sessions map does not grow forever on a long-running gateway. A session
// with a live transcoder is left alone; its workspace is being written to.
func (m *ManagerCtx) Evict(id string) {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return
	}

	s.mu.Lock()
	running := s.process != nil && s.process.Running()
	s.mu.Unlock()

	if !running {
		delete(m.sessions, id)
		m.logger.Debug().Str("stream-id", id).Msg("session evicted")
	}
}

// Shutdown kills all running transcoders. Their exit callbacks still run, so
// admission slots drain normally.
func (m *ManagerCtx) Shutdown() {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	for _, s := range m.sessions {
		s.mu.Lock()
		if s.process != nil && s.process.Running() {
			s.process.Stop()
		}
		s.mu.Unlock()
	}
}

// ServePlaylist is the playback entrypoint. Sources that already are hls
// playlists get relayed with rewritten segment urls; anything else goes
// through the transcode session flow.
func (m *ManagerCtx) ServePlaylist(w http.ResponseWriter, r *http.Request, req PlaybackRequest) {
	if strings.HasSuffix(req.URL, ".m3u8") {
		m.relayPlaylist(w, r, req)
		return
	}

	logger := m.logger.With().Str("url", req.URL).Logger()

	id := Fingerprint(req.URL, req.Token)
	ws := NewWorkspace(m.config.TmpRoot, id)
	if err := ws.Ensure(); err != nil {
		logger.Err(err).Str("workspace", ws.Root).Msg("unable to create workspace")
		m.servePlaylistError(w)
		return
	}

	s := m.session(id)
	s.mu.Lock()

	// warm: the running transcoder refreshed the playlist recently
	if ws.Fresh(m.config.Freshness) {
		s.mu.Unlock()
		m.serveWorkspacePlaylist(w, ws, logger)
		return
	}

	if s.process == nil || !s.process.Running() {
		// capacity first: a rejected request must leave the workspace alone
		if !m.admission.TryAcquire() {
			s.mu.Unlock()
			logger.Warn().Msg("transcoder ceiling reached")
			http.Error(w, "429 too many concurrent streams, try again later", http.StatusTooManyRequests)
			return
		}

		// cold: leftovers of the previous generation must not survive next
		// to new segments with overlapping numbering
		if err := ws.WipeArtifacts(); err != nil {
			m.admission.Release()
			s.mu.Unlock()
			logger.Err(err).Msg("unable to wipe stale artifacts")
			m.servePlaylistError(w)
			return
		}

		opts := TranscodeOptions{
			Input:          req.URL,
			SegmentTime:    m.config.SegmentTime,
			ListSize:       m.config.ListSize,
			SegmentPattern: ws.SegmentPattern(),
			PlaylistPath:   ws.PlaylistPath(),
		}
		if req.Portal != "" && req.MAC != "" && m.config.Headers != nil {
			opts.Headers = m.config.Headers(req.MAC, req.Portal+"/c/", req.Token)
		}

		procLogger := m.logger.With().Str("submodule", "transcoder").Str("stream-id", id).Logger()
		process := newProcess(id, m.config.CmdFactory(opts), procLogger, m.admission.Release)

		if err := process.Start(); err != nil {
			s.mu.Unlock()
			logger.Err(err).Msg("transcoder could not be started")
			m.servePlaylistError(w)
			return
		}

		s.process = process
		logger.Info().Str("stream-id", id).Msg("transcoder started")
	}

	s.mu.Unlock()

	if err := awaitFile(r.Context(), ws.Root, ws.PlaylistPath(), m.config.ReadyTimeout); err != nil {
		// the transcoder keeps running, a later request may reuse its output
		logger.Warn().Err(err).Msg("playlist not ready in time")
		m.servePlaylistError(w)
		return
	}

	m.serveWorkspacePlaylist(w, ws, logger)
}

// relayPlaylist passes a remote hls playlist through, rewriting embedded
// segment references so they are fetched back through the gateway. No
// transcoder is spawned and no admission slot is consumed.
func (m *ManagerCtx) relayPlaylist(w http.ResponseWriter, r *http.Request, req PlaybackRequest) {
	logger := m.logger.With().Str("url", req.URL).Logger()

	base, err := url.Parse(req.URL)
	if err != nil {
		http.Error(w, "400 invalid source url", http.StatusBadRequest)
		return
	}

	request, err := http.NewRequestWithContext(r.Context(), http.MethodGet, req.URL, nil)
	if err != nil {
		http.Error(w, "400 invalid source url", http.StatusBadRequest)
		return
	}

	if req.Portal != "" && req.MAC != "" && m.config.Headers != nil {
		request.Header = m.config.Headers(req.MAC, req.Portal+"/c/", req.Token)
	}

	resp, err := m.playlistClient.Do(request)
	if err != nil {
		logger.Warn().Err(err).Msg("unable to fetch source playlist")
		m.servePlaylistError(w)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Int("code", resp.StatusCode).Msg("source playlist fetch failed")
		m.servePlaylistError(w)
		return
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("unable to read source playlist")
		m.servePlaylistError(w)
		return
	}

	id := Fingerprint(req.URL, req.Token)
	playlist := RewriteRemote(string(buf), base, m.config.PublicBase, id, req)

	w.Header().Set("Content-Type", playlistContentType)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(playlist))
}

func (m *ManagerCtx) serveWorkspacePlaylist(w http.ResponseWriter, ws Workspace, logger zerolog.Logger) {
	buf, err := os.ReadFile(ws.PlaylistPath())
	if err != nil {
		logger.Err(err).Msg("unable to read workspace playlist")
		m.servePlaylistError(w)
		return
	}

	playlist := RewriteLocal(string(buf), m.config.PublicBase, ws.ID)

	w.Header().Set("Content-Type", playlistContentType)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(playlist))
}

func (m *ManagerCtx) servePlaylistError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(emptyPlaylist))
}

// awaitFile waits for the transcoder to write its first playlist. It relies
// on filesystem notifications with a fallback poll ticker for filesystems
// where fsnotify does not deliver, bounded by the ready timeout and the
// request context.
func awaitFile(ctx context.Context, dir string, file string, timeout time.Duration) error {
	if _, err := os.Stat(file); err == nil {
		return nil
	}

	var events chan fsnotify.Event

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()

		if err := watcher.Add(dir); err == nil {
			events = watcher.Events
		}
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrNotReady
		case <-events:
		case <-ticker.C:
		}

		if _, err := os.Stat(file); err == nil {
			return nil
		}
	}
}
