/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/sharecart/pkg/cartfile"
	"github.com/ssargent/sharecart/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sharecart config file",
	Long: `Write a config file with a generated API key for the REST server.

The cart path comes from --cart when given. With --game-dir the cart is
looked up next to the game the way Sharecart1000 games do: ../dat/o_o.ini
first, then dat/o_o.ini.

Examples:
  sharecart init
  sharecart init --game-dir ./MyGame
  sharecart init --config ./sharecart.yaml --cart ./dat/o_o.ini --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		gameDir, _ := cmd.Flags().GetString("game-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cartPath := ""
		if cmd.Flags().Changed("cart") {
			cartPath, _ = cmd.Flags().GetString("cart")
		} else if gameDir != "" {
			cartPath = resolveGameCart(gameDir)
		}

		created, err := config.BootstrapConfig(configPath, cartPath)
		if err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		cmd.Printf("Config written to %s\n", configPath)
		cmd.Printf("Cart file: %s\n", created.CartPath)
		cmd.Printf("API key: %s\n", created.Server.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("game-dir", "", "Directory of a Sharecart1000 game executable")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
}

// resolveGameCart finds the cart for a game directory, falling back to the
// conventional location when no cart exists yet.
func resolveGameCart(gameDir string) string {
	path, err := cartfile.Locate(gameDir)
	if errors.Is(err, cartfile.ErrNotFound) {
		return filepath.Join(gameDir, "..", cartfile.DirName, cartfile.FileName)
	}
	return path
}
