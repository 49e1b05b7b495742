package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Manage import batches",
}

var batchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List import batches, newest first",
	Run:   runBatchList,
}

var batchUndoCmd = &cobra.Command{
	Use:   "undo <batch-id>",
	Short: "Delete every transaction of an import batch",
	Args:  cobra.ExactArgs(1),
	Run:   runBatchUndo,
}

func init() {
	batchCmd.AddCommand(batchListCmd, batchUndoCmd)
}

func runBatchList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	batches, err := a.svc.ListImportBatches(ctx)
	exitOnError(err, "failed to list import batches")

	if len(batches) == 0 {
		fmt.Println("No import batches")
		return
	}
	for _, b := range batches {
		fmt.Printf("%s  %s  %-9s  %5d  %s\n",
			b.CreatedAt.Format("2006-01-02 15:04"), b.ID, b.Status, b.TransactionCount, b.Source)
	}
}

func runBatchUndo(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	n, err := a.svc.DeleteImportBatch(ctx, args[0])
	exitOnError(err, "failed to undo import batch")

	fmt.Printf("Removed %d transactions from batch %s\n", n, args[0])
}
