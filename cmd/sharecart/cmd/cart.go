/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/sharecart/pkg/cart"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart record",
	Long: `Decode the cart file and print its record as YAML, or JSON with --json.
A missing cart file prints the default record.

Example:
  sharecart show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		record, err := openStore().Load()
		if err != nil {
			return err
		}
		return outputRecord(cmd.OutOrStdout(), record, asJSON)
	},
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Print the cart text for a YAML record",
	Long: `Read a record as YAML (or JSON) from file, or stdin when no file is given,
and print its canonical cart text. Nothing is written to the cart file.

Example:
  echo 'map_x: 73' | sharecart encode`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open record: %w", err)
			}
			defer f.Close()
			in = f
		}

		record, err := readRecord(in)
		if err != nil {
			return err
		}

		_, err = io.WriteString(cmd.OutOrStdout(), cart.Encode(record))
		return err
	},
}

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite the cart file in canonical form",
	Long: `Decode the cart file and write it back in canonical form: the [Main]
section only, every field present, in order. The previous contents are
journaled first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		_, snapshotID, err := rewriteCart(openStore(), j, logger, rewrite{
			change: func(r cart.Record) (cart.Record, error) { return r, nil },
		})
		if err != nil {
			return err
		}

		printWritten(cmd, snapshotID)
		return nil
	},
}

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one cart field",
	Long: fmt.Sprintf(`Set one cart field from its text form, applying the same rules as
reading the cart file. Key names ignore case. The previous contents are
journaled first.

Keys: %s

Examples:
  sharecart set MapX 512
  sharecart set Switch3 true
  sharecart set PlayerName "Fearless Concurrency"`, strings.Join(cart.Fields(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		saved, snapshotID, err := rewriteCart(openStore(), j, logger, rewrite{
			change: func(r cart.Record) (cart.Record, error) {
				next, ok := r.With(key, value)
				if !ok {
					return r, fmt.Errorf("unknown cart field %q", key)
				}
				return next, nil
			},
		})
		if err != nil {
			return err
		}

		printWritten(cmd, snapshotID)
		return outputRecord(cmd.OutOrStdout(), saved, false)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(setCmd)

	showCmd.Flags().Bool("json", false, "Print JSON instead of YAML")
}

func printWritten(cmd *cobra.Command, snapshotID string) {
	cmd.Printf("Cart written to %s\n", cfg.CartPath)
	if snapshotID != "" {
		cmd.Printf("Previous contents saved as snapshot %s\n", snapshotID)
	}
}
