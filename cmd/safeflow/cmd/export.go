package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/beancount"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/converter"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/db"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/export"
)

var (
	dateFrom string
	dateTo   string
	dryRun   bool
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to Beancount",
	Long: `Export ledger transactions to monthly Beancount files.

This command:
1. Filters out transactions exported before
2. Converts them to Beancount format using the account mapping
3. Appends to monthly Beancount files under the export root
4. Records export history in SQLite

Example:
  safeflow export
  safeflow export --from 2024-01-01 --to 2024-01-31 --dry-run`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&dateFrom, "from", "", "Start date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&dateTo, "to", "", "End date (YYYY-MM-DD), inclusive")
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no file writes)")
}

func runExport(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	slog.Info("Starting export", "from", dateFrom, "to", dateTo, "dry_run", dryRun)

	opts := export.Options{DryRun: dryRun, Out: os.Stdout}
	if dateFrom != "" {
		from, err := parseDate(dateFrom)
		exitOnError(err, "invalid --from")
		opts.From = from
	}
	if dateTo != "" {
		to, err := parseDate(dateTo)
		exitOnError(err, "invalid --to")
		opts.To = to.Add(24*time.Hour - time.Nanosecond)
	}

	a := openApp(ctx)
	defer a.Close()

	mapper, err := converter.NewMapper(a.cfg.Paths.GetAccountMappingPath())
	exitOnError(err, "failed to load account mapping")

	history := db.NewExportHistory(a.conn)
	repo := beancount.NewFileSystemRepository(a.cfg.Paths, a.cfg.BaseCurrency)
	exporter := export.NewExporter(a.conn, history, repo, mapper, slog.Default())

	result, err := exporter.Export(ctx, opts)
	exitOnError(err, "failed to export")

	fmt.Printf("Exported %d transactions, skipped %d already exported", result.Exported, result.Skipped)
	if result.Failed > 0 {
		fmt.Printf(", %d failed", result.Failed)
	}
	fmt.Println()
	for _, f := range result.Files {
		fmt.Printf("  %s\n", f)
	}
}
