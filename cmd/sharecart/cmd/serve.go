/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/sharecart/pkg/api"
	"github.com/ssargent/sharecart/pkg/cartfile"
	"github.com/ssargent/sharecart/pkg/config"
)

// autoAPIKey asks serve to generate a key for this run only
const autoAPIKey = "auto"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the sharecart REST API server. Every route under /api/v1 needs the
X-API-Key header; /metrics is open for Prometheus.

With api_key set to "auto" a key is generated for this run and printed.

Examples:
  sharecart serve
  sharecart serve --port 9300 --bind 0.0.0.0 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverConfig, err := serverSettings(cmd, cfg)
		if err != nil {
			return err
		}
		if serverConfig.APIKey == autoAPIKey {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			serverConfig.APIKey = key
			cmd.Printf("Generated API key for this run: %s\n", key)
		}

		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}

		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("serving cart",
			zap.String("cart", cfg.CartPath),
			zap.String("journal", cfg.JournalDir),
		)

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, cartfile.New(cfg.CartPath, nil), j, serverConfig, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for clients (overrides config)")
}

// serverSettings merges the serve flags over the config's server section
func serverSettings(cmd *cobra.Command, settings *config.Config) (api.ServerConfig, error) {
	serverConfig := api.ServerConfig{
		Port:   settings.Server.Port,
		Bind:   settings.Server.Bind,
		APIKey: settings.Server.APIKey,
	}

	if cmd.Flags().Changed("port") {
		serverConfig.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		serverConfig.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("api-key") {
		serverConfig.APIKey, _ = cmd.Flags().GetString("api-key")
	}

	if serverConfig.Port < 1 || serverConfig.Port > 65535 {
		return api.ServerConfig{}, fmt.Errorf("port out of range: %d", serverConfig.Port)
	}
	if serverConfig.APIKey == "" {
		return api.ServerConfig{}, fmt.Errorf("an API key is required (set server.api_key or --api-key)")
	}
	return serverConfig, nil
}
