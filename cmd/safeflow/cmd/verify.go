package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check cached balances against transactions",
	Long: `Recompute every account balance from its transactions and report
accounts whose cached balance differs. Balances are not changed.`,
	Run: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	discrepancies, err := a.svc.VerifyBalances(ctx)
	exitOnError(err, "failed to verify balances")

	if len(discrepancies) == 0 {
		fmt.Println("All balances match")
		return
	}

	currencies := accountCurrencies(ctx, a)
	for _, d := range discrepancies {
		cur := currencies[d.AccountID]
		fmt.Printf("%s  cached %s, computed %s\n",
			d.AccountID, displayMoney(d.Cached, cur), displayMoney(d.Computed, cur))
	}
	a.Close()
	os.Exit(2)
}
