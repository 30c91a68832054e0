package stream

import (
	"io"
	"net/http"
	"os"
)

// hop-by-hop and framing headers that would conflict with the re-framed
// response
var droppedUpstreamHeaders = map[string]struct{}{
	"Connection":        {},
	"Keep-Alive":        {},
	"Transfer-Encoding": {},
	"Content-Encoding":  {},
	"Content-Type":      {},
	"Te":                {},
	"Trailer":           {},
	"Upgrade":           {},
}

// ServeSegment resolves a rewritten segment reference: either a file the
// transcoder left in the stream workspace, or a remote url embedded by the
// playlist relay.
func (m *ManagerCtx) ServeSegment(w http.ResponseWriter, r *http.Request, req SegmentRequest) {
	switch {
	case req.File != "":
		m.serveLocalSegment(w, r, req)
	case req.URL != "":
		m.proxySegment(w, r, req)
	default:
		http.Error(w, "400 missing segment reference", http.StatusBadRequest)
	}
}

func (m *ManagerCtx) serveLocalSegment(w http.ResponseWriter, r *http.Request, req SegmentRequest) {
	ws := NewWorkspace(m.config.TmpRoot, req.StreamID)
	segmentPath := ws.SegmentPath(req.File)

	if _, err := os.Stat(segmentPath); err != nil {
		m.logger.Warn().Str("path", segmentPath).Msg("segment file not found")
		http.Error(w, "404 segment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", segmentContentType)
	w.Header().Set("Cache-Control", "no-cache")

	// ServeFile handles range requests for seeking clients
	http.ServeFile(w, r, segmentPath)
}

func (m *ManagerCtx) proxySegment(w http.ResponseWriter, r *http.Request, req SegmentRequest) {
	request, err := http.NewRequestWithContext(r.Context(), http.MethodGet, req.URL, nil)
	if err != nil {
		http.Error(w, "400 invalid segment url", http.StatusBadRequest)
		return
	}

	if req.Portal != "" && req.MAC != "" && m.config.Headers != nil {
		request.Header = m.config.Headers(req.MAC, req.Portal+"/c/", req.Token)
	} else if ua := r.Header.Get("User-Agent"); ua != "" {
		// no portal context, keep the caller's identity intact
		request.Header.Set("User-Agent", ua)
	}

	if rng := r.Header.Get("Range"); rng != "" {
		request.Header.Set("Range", rng)
	}

	resp, err := m.segmentClient.Do(request)
	if err != nil {
		m.logger.Warn().Err(err).Str("url", req.URL).Msg("unable to fetch segment")
		http.Error(w, "404 segment not found", http.StatusNotFound)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if _, drop := droppedUpstreamHeaders[http.CanonicalHeaderKey(key)]; drop {
			continue
		}
		w.Header()[key] = values
	}

	w.Header().Set("Content-Type", segmentContentType)

	// propagate upstream status, notably partial content for ranges
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
