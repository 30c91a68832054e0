package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streamgate/streamgate/internal/portal"
	"github.com/streamgate/streamgate/internal/stream"
)

type ApiManagerCtx struct {
	logger  zerolog.Logger
	streams stream.Manager
	portal  *portal.ClientCtx
}

func New(streams stream.Manager, portalClient *portal.ClientCtx) *ApiManagerCtx {
	return &ApiManagerCtx{
		logger:  log.With().Str("module", "api").Logger(),
		streams: streams,
		portal:  portalClient,
	}
}

func (a *ApiManagerCtx) Mount(r *chi.Mux) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		//nolint
		_, _ = w.Write([]byte("streamgate is running"))
	})

	a.Playback(r)
	a.Segments(r)
	a.Portal(r)
}
