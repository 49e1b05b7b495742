package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/statement"
)

var (
	importAccount string
	importSource  string
	importMapping string
)

var importCmd = &cobra.Command{
	Use:   "import <statement.csv>",
	Short: "Import a CSV bank statement",
	Long: `Import transactions from a CSV bank statement into an account.

This command:
1. Reads the statement using the column mapping
2. Skips rows that duplicate existing transactions
3. Records the rest as one import batch
4. Categorises the new rows in the background

The batch can be undone with "safeflow batch undo".

Example:
  safeflow import statement.csv --account <id>
  safeflow import statement.csv --account <id> --mapping cba.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importAccount, "account", "", "Account ID (required)")
	importCmd.Flags().StringVar(&importSource, "source", "", "Source label (default is the file name)")
	importCmd.Flags().StringVar(&importMapping, "mapping", "", "YAML column mapping (default: date, description, amount)")
	importCmd.MarkFlagRequired("account")
}

func runImport(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	path := args[0]

	mapping := statement.DefaultMapping
	if importMapping != "" {
		var err error
		mapping, err = statement.LoadMapping(importMapping)
		exitOnError(err, "failed to load column mapping")
	}

	f, err := os.Open(path)
	exitOnError(err, "failed to open statement")
	defer f.Close()

	rows, err := statement.ReadCSV(f, importAccount, mapping)
	exitOnError(err, "failed to read statement")
	slog.Info("Read statement", "path", path, "rows", len(rows))

	source := importSource
	if source == "" {
		source = filepath.Base(path)
	}

	a := openApp(ctx)
	defer a.Close()

	result, err := a.svc.BulkImport(ctx, ledger.ImportRequest{Source: source, Rows: rows})
	exitOnError(err, "failed to import statement")

	fmt.Printf("Imported %d transactions, skipped %d duplicates\n", result.Imported, result.Skipped)
	if result.BatchID != "" {
		fmt.Printf("Batch: %s\n", result.BatchID)
	}
}
