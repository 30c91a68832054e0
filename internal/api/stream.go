package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamgate/streamgate/internal/stream"
)

// Playback mounts the main endpoint: hand a source url (plus optional portal
// context) to the session manager and get back a playable hls playlist.
func (a *ApiManagerCtx) Playback(r chi.Router) {
	r.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		sourceURL := query.Get("url")
		if sourceURL == "" {
			http.Error(w, "400 missing url param", http.StatusBadRequest)
			return
		}

		a.streams.ServePlaylist(w, r, stream.PlaybackRequest{
			URL:    sourceURL,
			Portal: query.Get("portal"),
			MAC:    query.Get("mac"),
			Token:  query.Get("token"),
		})
	})
}

// Segments mounts the endpoint that rewritten playlists point back at.
func (a *ApiManagerCtx) Segments(r chi.Router) {
	r.Get("/segment/{streamID}", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		a.streams.ServeSegment(w, r, stream.SegmentRequest{
			StreamID: chi.URLParam(r, "streamID"),
			File:     query.Get("file"),
			URL:      query.Get("url"),
			Portal:   query.Get("portal"),
			MAC:      query.Get("mac"),
			Token:    query.Get("token"),
		})
	})
}
