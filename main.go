package streamgate

import (
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/streamgate/streamgate/internal/api"
	"github.com/streamgate/streamgate/internal/config"
	"github.com/streamgate/streamgate/internal/http"
	"github.com/streamgate/streamgate/internal/portal"
	"github.com/streamgate/streamgate/internal/stream"
)

var Service *Main

func init() {
	Service = &Main{
		ServerConfig:  &config.Server{},
		GatewayConfig: &config.Gateway{},
	}
}

type Main struct {
	ServerConfig  *config.Server
	GatewayConfig *config.Gateway

	logger     zerolog.Logger
	streams    *stream.ManagerCtx
	sweeper    *stream.SweeperCtx
	portal     *portal.ClientCtx
	apiManager *api.ApiManagerCtx
	server     *http.ServerCtx
}

func (main *Main) Preflight() {
	main.logger = log.With().Str("service", "main").Logger()
}

func (main *Main) Start() {
	gateway := main.GatewayConfig

	main.streams = stream.New(stream.Config{
		TmpRoot:      gateway.TmpRoot,
		Freshness:    gateway.Freshness,
		ReadyTimeout: gateway.ReadyTimeout,
		SegmentTime:  gateway.SegmentTime,
		ListSize:     gateway.ListSize,
		FFmpegBinary: gateway.FFmpegBinary,
		PublicBase:   gateway.PublicURL,
		Headers:      portal.DeviceHeaders,
	}, stream.NewAdmission(gateway.MaxStreams))

	main.sweeper = stream.NewSweeper(gateway.TmpRoot, gateway.TTL, gateway.SweepInterval, main.streams.Evict)
	if err := main.sweeper.Start(); err != nil {
		main.logger.Panic().Err(err).Msg("unable to start cleanup sweeper")
	}

	main.portal = portal.NewClient(gateway.PortalTimeout)
	main.apiManager = api.New(main.streams, main.portal)

	main.server = http.New(main.ServerConfig)
	main.server.Mount(main.apiManager.Mount)
	main.server.Start()
}

func (main *Main) Shutdown() {
	if err := main.server.Shutdown(); err != nil {
		main.logger.Err(err).Msg("server shutdown with an error")
	} else {
		main.logger.Debug().Msg("server shutdown")
	}

	main.sweeper.Stop()
	main.streams.Shutdown()
}

func (main *Main) ServeCommand(cmd *cobra.Command, args []string) {
	main.logger.Info().Msg("starting gateway")
	main.Start()
	main.logger.Info().Msg("gateway ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	sig := <-quit

	main.logger.Warn().Msgf("received %s, attempting graceful shutdown", sig)
	main.Shutdown()
	main.logger.Info().Msg("shutdown complete")
}
