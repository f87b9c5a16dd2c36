/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/sharecart/pkg/cart"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled cart snapshots",
	Long: `List the cart snapshots taken before each write, newest first.

Example:
  sharecart history --limit 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		entries, err := j.List(limit)
		if err != nil {
			return err
		}
		return outputEntries(cmd.OutOrStdout(), entries)
	},
}

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Write a snapshot back to the cart file",
	Long: `Write the record of a journaled snapshot back to the cart file. The
contents being replaced are journaled first, unless they do not parse.

Example:
  sharecart restore 2ZpOe8cA0dhQ9ESJ3ZVwHlJ5pXk`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		entry, err := j.Get(args[0])
		if err != nil {
			return err
		}

		_, snapshotID, err := rewriteCart(openStore(), j, logger, rewrite{
			change:         func(cart.Record) (cart.Record, error) { return entry.Record, nil },
			replacesBroken: true,
		})
		if err != nil {
			return err
		}

		cmd.Printf("Restored snapshot %s\n", entry.ID)
		printWritten(cmd, snapshotID)
		return nil
	},
}

// dropCmd represents the drop command
var dropCmd = &cobra.Command{
	Use:   "drop <id>",
	Short: "Delete one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		if err := j.Delete(args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted snapshot %s\n", args[0])
		return nil
	},
}

// pruneCmd represents the prune command
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	Long: `Delete all but the newest --keep snapshots.

Example:
  sharecart prune --keep 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return fmt.Errorf("--keep must not be negative")
		}

		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		removed, err := j.Prune(keep)
		if err != nil {
			return err
		}
		logger.Info("pruned journal", zap.Int("removed", removed), zap.Int("kept", keep))
		cmd.Printf("Removed %d snapshot(s)\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(pruneCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Maximum snapshots to list (0 for all)")
	pruneCmd.Flags().Int("keep", 100, "Number of newest snapshots to keep")
}
