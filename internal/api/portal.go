package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamgate/streamgate/internal/portal"
)

// Portal mounts the upstream portal surface: the stb handshake and the
// channel catalog, optionally rendered as M3U.
func (a *ApiManagerCtx) Portal(r chi.Router) {
	r.Get("/handshake", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		portalURL := query.Get("portal")
		mac := query.Get("mac")
		if portalURL == "" || mac == "" {
			writeJSONError(w, http.StatusBadRequest, "missing portal or mac")
			return
		}

		body, err := a.portal.Handshake(r.Context(), portalURL, mac)
		if err != nil {
			a.logger.Warn().Err(err).Msg("handshake failed")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	r.Get("/channels", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		portalURL := query.Get("portal")
		mac := query.Get("mac")
		token := query.Get("token")
		format := query.Get("format")

		if portalURL == "" || mac == "" || token == "" {
			writeJSONError(w, http.StatusBadRequest, "missing portal, mac, or token")
			return
		}

		body, err := a.portal.Channels(r.Context(), portalURL, mac, token)
		if err != nil {
			a.logger.Warn().Err(err).Msg("channel listing failed")

			// m3u consumers get a degraded but well-formed playlist
			if format == "m3u" {
				w.Header().Set("Content-Type", "application/x-mpegURL")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(portal.EmptyPlaylist))
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if format == "m3u" {
			w.Header().Set("Content-Type", "application/x-mpegURL")
			_, _ = w.Write([]byte(portal.PlaylistFromChannels(body)))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
}
