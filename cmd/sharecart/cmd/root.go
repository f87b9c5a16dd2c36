/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/sharecart/pkg/config"
	"github.com/ssargent/sharecart/pkg/di"
	"github.com/ssargent/sharecart/pkg/logging"
)

var (
	container *di.Container
	cfg       *config.Config
	logger    = zap.NewNop()
)

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sharecart",
	Short: "sharecart - Sharecart1000 save file tool",
	Long: `sharecart reads, edits and serves the shared Sharecart1000 save file
(dat/o_o.ini), keeping a journal of every version it replaces.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.New(cfg.Logging.Level)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("configuration loaded",
			zap.String("cart", cfg.CartPath),
			zap.String("journal", cfg.JournalDir),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/sharecart/config.yaml)")
	rootCmd.PersistentFlags().StringP("cart", "c", "", "Path to the cart file (overrides config)")
	rootCmd.PersistentFlags().String("journal-dir", "", "Snapshot journal directory (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")
}

// loadSettings reads the config file, if there is one, and applies the
// global flag overrides.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	settings := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		settings = loaded
	}

	if cmd.Flags().Changed("cart") {
		settings.CartPath, _ = cmd.Flags().GetString("cart")
	}
	if cmd.Flags().Changed("journal-dir") {
		settings.JournalDir, _ = cmd.Flags().GetString("journal-dir")
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		settings.Logging.Level = "debug"
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}
