package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/streamgate/streamgate"
)

func init() {
	command := &cobra.Command{
		Use:   "serve",
		Short: "serve the gateway",
		Long:  `serve the iptv gateway server`,
		Run:   streamgate.Service.ServeCommand,
	}

	configs := []Config{
		streamgate.Service.ServerConfig,
		streamgate.Service.GatewayConfig,
	}

	cobra.OnInitialize(func() {
		for _, cfg := range configs {
			cfg.Set()
		}
		streamgate.Service.Preflight()
	})

	for _, cfg := range configs {
		if err := cfg.Init(command); err != nil {
			log.Panic().Err(err).Msg("unable to run serve command")
		}
	}

	rootCmd.AddCommand(command)
}
