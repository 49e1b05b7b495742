package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

var (
	accountName     string
	accountType     string
	accountCurrency string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account",
	Long: `Create an account with a zero balance.

Types: bank, credit, cash, investment, loan, other.

Example:
  safeflow account add --name Everyday --type bank --currency AUD`,
	Run: runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts and balances",
	Run:   runAccountList,
}

var accountDeactivateCmd = &cobra.Command{
	Use:   "deactivate <account-id>",
	Short: "Mark an account inactive",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setAccountActive(args[0], false) },
}

var accountActivateCmd = &cobra.Command{
	Use:   "activate <account-id>",
	Short: "Mark an account active",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setAccountActive(args[0], true) },
}

func init() {
	accountAddCmd.Flags().StringVar(&accountName, "name", "", "Account name (required)")
	accountAddCmd.Flags().StringVar(&accountType, "type", string(models.AccountTypeBank), "Account type")
	accountAddCmd.Flags().StringVar(&accountCurrency, "currency", "", "ISO 4217 currency (default is SAFEFLOW_BASE_CURRENCY)")
	accountAddCmd.MarkFlagRequired("name")

	accountCmd.AddCommand(accountAddCmd, accountListCmd, accountDeactivateCmd, accountActivateCmd)
}

func runAccountAdd(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	currency := accountCurrency
	if currency == "" {
		currency = a.cfg.BaseCurrency
	}

	account, err := a.svc.CreateAccount(ctx, ledger.NewAccount{
		Name:     accountName,
		Type:     models.AccountType(accountType),
		Currency: currency,
	})
	exitOnError(err, "failed to create account")

	fmt.Printf("Created account %s (%s)\n", account.Name, account.ID)
}

func runAccountList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	accounts, err := a.svc.ListAccounts(ctx)
	exitOnError(err, "failed to list accounts")

	if len(accounts) == 0 {
		fmt.Println("No accounts")
		return
	}

	for _, acc := range accounts {
		status := ""
		if !acc.IsActive {
			status = " (inactive)"
		}
		fmt.Printf("%-36s  %-20s  %-10s  %16s%s\n",
			acc.ID, acc.Name, acc.Type, displayMoney(acc.Balance, acc.Currency), status)
	}
}

func setAccountActive(id string, active bool) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	exitOnError(a.svc.SetAccountActive(ctx, id, active), "failed to update account")
	fmt.Printf("Account %s active=%v\n", id, active)
}
