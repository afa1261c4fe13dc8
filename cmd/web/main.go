package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/runtime/app"
	"github.com/de-tools/agri-atlas/pkg/server"
	"github.com/de-tools/agri-atlas/pkg/services/config"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Agri Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (default ./"+config.DefaultFile+" when present)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(config.ResolvePath(cfgPath))
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(os.Stdout, cfg.Log.Level)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	logger.Info().
		Str("source", cfg.Dataset.Source).
		Str("sink", cfg.Export.Sink).
		Bool("assistant", a.Assistant != nil).
		Msg("configuration loaded")

	// SERVER_HOST and SERVER_PORT from .env take precedence over the config.
	host := cfg.Server.Host
	if v := os.Getenv("SERVER_HOST"); v != "" {
		host = v
	}
	port := cfg.Server.Port
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port = v
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:         net.JoinHostPort(host, port),
		Dependencies: a.ServerDependencies(),
	})
	return api.Start()
}
