// Package cmd provides CLI commands for safeflow.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "safeflow",
	Short: "Household finance ledger",
	Long: `safeflow keeps a local ledger of household accounts, transactions
and investment holdings in a SQLite database.

It supports:
- Recording income, expenses and transfers with cached balances
- Importing bank statements (CSV) with duplicate detection and undo
- Categorising imports with keyword rules and Gemini
- Tracking holdings with cost basis, franking credits and prices
- Exporting the ledger to Beancount files

Example:
  safeflow account add --name Everyday --type bank
  safeflow import statement.csv --account <id>
  safeflow export --from 2024-01-01 --to 2024-01-31`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(holdingCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(verifyCmd)
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
