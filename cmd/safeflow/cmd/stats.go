package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/db"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger and export statistics",
	Long: `Display statistics about the ledger and Beancount exports.

Shows:
- Total number of accounts, transactions and holdings
- Total number of exported transactions
- Last export timestamp

Example:
  safeflow stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	stats, err := db.NewExportHistory(a.conn).GetStats()
	exitOnError(err, "failed to get statistics")

	// Display statistics
	fmt.Println("\n=== SafeFlow Statistics ===")
	fmt.Printf("Accounts:              %d\n", stats.TotalAccounts)
	fmt.Printf("Transactions:          %d\n", stats.TotalTransactions)
	fmt.Printf("Holdings:              %d\n", stats.TotalHoldings)
	fmt.Printf("Exported transactions: %d\n", stats.TotalExported)

	if stats.LastExport.Valid {
		fmt.Printf("Last export:           %s\n", stats.LastExport.String)
	} else {
		fmt.Printf("Last export:           (never)\n")
	}

	fmt.Println()

	slog.Debug("Statistics displayed successfully")
}
