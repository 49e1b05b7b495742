package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

var (
	txAccount     string
	txType        string
	txAmount      string
	txDescription string
	txDate        string
	txCategory    string
	txTransferTo  string
	txReconciled  bool
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Manage transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Long: `Record an income, expense or transfer and update account balances.

Example:
  safeflow tx add --account <id> --type expense --amount 45.20 --desc "Groceries"
  safeflow tx add --account <id> --type transfer --amount 500 --to <savings-id>`,
	Run: runTxAdd,
}

var txUpdateCmd = &cobra.Command{
	Use:   "update <transaction-id>",
	Short: "Change a transaction",
	Long: `Change selected fields of a transaction. Only the flags given are applied.
Pass an empty --category or --to to clear it.`,
	Args: cobra.ExactArgs(1),
	Run:  runTxUpdate,
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete <transaction-id>...",
	Short: "Delete transactions and reverse their balance effects",
	Args:  cobra.MinimumNArgs(1),
	Run:   runTxDelete,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Run:   runTxList,
}

func init() {
	for _, c := range []*cobra.Command{txAddCmd, txUpdateCmd} {
		c.Flags().StringVar(&txAccount, "account", "", "Source account ID")
		c.Flags().StringVar(&txType, "type", "", "income, expense or transfer")
		c.Flags().StringVar(&txAmount, "amount", "", "Amount, e.g. 12.50")
		c.Flags().StringVar(&txDescription, "desc", "", "Description")
		c.Flags().StringVar(&txDate, "date", "", "Date (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&txCategory, "category", "", "Category ID")
		c.Flags().StringVar(&txTransferTo, "to", "", "Destination account ID for transfers")
		c.Flags().BoolVar(&txReconciled, "reconciled", false, "Mark as reconciled")
	}
	txAddCmd.MarkFlagRequired("account")
	txAddCmd.MarkFlagRequired("type")
	txAddCmd.MarkFlagRequired("amount")

	txListCmd.Flags().StringVar(&txAccount, "account", "", "Only transactions attributed to this account")

	txCmd.AddCommand(txAddCmd, txUpdateCmd, txDeleteCmd, txListCmd)
}

func runTxAdd(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	amount, err := parsePositiveAmount(txAmount)
	exitOnError(err, "invalid amount")
	date, err := parseDate(txDate)
	exitOnError(err, "invalid date")

	a := openApp(ctx)
	defer a.Close()

	t, err := a.svc.CreateTransaction(ctx, ledger.NewTransaction{
		AccountID:           txAccount,
		Type:                models.TransactionType(txType),
		Amount:              amount,
		Description:         txDescription,
		Date:                date,
		CategoryID:          optionalString(txCategory),
		TransferToAccountID: optionalString(txTransferTo),
		IsReconciled:        txReconciled,
	})
	exitOnError(err, "failed to create transaction")

	fmt.Printf("Created transaction %s\n", t.ID)
}

func runTxUpdate(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	flags := cmd.Flags()

	var patch ledger.TransactionPatch
	if flags.Changed("account") {
		patch.AccountID = &txAccount
	}
	if flags.Changed("type") {
		typ := models.TransactionType(txType)
		patch.Type = &typ
	}
	if flags.Changed("amount") {
		amount, err := parsePositiveAmount(txAmount)
		exitOnError(err, "invalid amount")
		patch.Amount = &amount
	}
	if flags.Changed("desc") {
		patch.Description = &txDescription
	}
	if flags.Changed("date") {
		date, err := parseDate(txDate)
		exitOnError(err, "invalid date")
		patch.Date = &date
	}
	if flags.Changed("category") {
		patch.CategoryID = &txCategory
	}
	if flags.Changed("to") {
		patch.TransferToAccountID = &txTransferTo
	}
	if flags.Changed("reconciled") {
		patch.IsReconciled = &txReconciled
	}

	a := openApp(ctx)
	defer a.Close()

	t, err := a.svc.UpdateTransaction(ctx, args[0], patch)
	exitOnError(err, "failed to update transaction")

	fmt.Printf("Updated transaction %s\n", t.ID)
}

func runTxDelete(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	if len(args) == 1 {
		exitOnError(a.svc.DeleteTransaction(ctx, args[0]), "failed to delete transaction")
		fmt.Printf("Deleted transaction %s\n", args[0])
		return
	}

	n, err := a.svc.DeleteTransactions(ctx, args)
	exitOnError(err, "failed to delete transactions")
	fmt.Printf("Deleted %d transactions\n", n)
}

func runTxList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	accounts, err := a.svc.ListAccounts(ctx)
	exitOnError(err, "failed to list accounts")
	currency := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		currency[acc.ID] = acc.Currency
	}

	var txns []models.Transaction
	if txAccount != "" {
		txns, err = a.svc.ListTransactions(ctx, txAccount)
	} else {
		txns, err = a.conn.ListTransactions(ctx)
	}
	exitOnError(err, "failed to list transactions")

	for _, t := range txns {
		cur := currency[t.AccountID]
		if cur == "" {
			cur = a.cfg.BaseCurrency
		}
		fmt.Printf("%s  %s  %-8s  %14s  %s\n",
			t.Date.Format("2006-01-02"), t.ID, t.Type, displayMoney(t.Amount, cur), t.Description)
	}
}
