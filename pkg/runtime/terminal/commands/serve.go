package commands

import (
	"net"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/server"
)

func NewServeCmd(getApp AppFunc) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the report web API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			if addr == "" {
				addr = net.JoinHostPort(a.Config.Server.Host, a.Config.Server.Port)
			}

			api := server.NewWebAPI(*zerolog.Ctx(cmd.Context()), server.Config{
				Addr:         addr,
				Dependencies: a.ServerDependencies(),
			})
			return api.Start()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.host:server.port)")
	return cmd
}
