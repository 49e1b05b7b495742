package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

var (
	holdingAccount  string
	holdingSymbol   string
	holdingType     string
	holdingUnits    string
	holdingCost     string
	holdingPrice    string
	holdingFees     string
	holdingAmount   string
	holdingFranking string
	holdingDate     string
	holdingNotes    string
	holdingDistrib  bool
	holdingFresh    bool
)

var holdingCmd = &cobra.Command{
	Use:   "holding",
	Short: "Manage investment holdings",
}

var holdingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Open a holding in an investment account",
	Long: `Open a holding with an optional opening position.

Example:
  safeflow holding add --account <id> --symbol VAS --type etf --units 10 --cost 950.00`,
	Run: runHoldingAdd,
}

var holdingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List holdings with cost basis and market value",
	Run:   runHoldingList,
}

var holdingBuyCmd = &cobra.Command{
	Use:   "buy <holding-id>",
	Short: "Record a purchase",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { runTrade(args[0], models.InvestmentBuy) },
}

var holdingSellCmd = &cobra.Command{
	Use:   "sell <holding-id>",
	Short: "Record a sale",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { runTrade(args[0], models.InvestmentSell) },
}

var holdingFeeCmd = &cobra.Command{
	Use:   "fee <holding-id>",
	Short: "Record a fee added to the cost basis",
	Args:  cobra.ExactArgs(1),
	Run:   runHoldingFee,
}

var holdingDividendCmd = &cobra.Command{
	Use:   "dividend <holding-id>",
	Short: "Record a dividend or distribution",
	Long: `Record a dividend or distribution. --franking gives the franked share
(0 to 100) used to compute the franking credit.

Example:
  safeflow holding dividend <id> --amount 70.00 --franking 100`,
	Args: cobra.ExactArgs(1),
	Run:  runHoldingDividend,
}

var holdingTxsCmd = &cobra.Command{
	Use:   "txs <holding-id>",
	Short: "List a holding's investment transactions",
	Args:  cobra.ExactArgs(1),
	Run:   runHoldingTxs,
}

var holdingDeleteTxCmd = &cobra.Command{
	Use:   "delete-tx <investment-transaction-id>",
	Short: "Delete an investment transaction and restore the holding",
	Args:  cobra.ExactArgs(1),
	Run:   runHoldingDeleteTx,
}

var holdingRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch current prices for all holdings",
	Run:   runHoldingRefresh,
}

func init() {
	holdingAddCmd.Flags().StringVar(&holdingAccount, "account", "", "Investment account ID (required)")
	holdingAddCmd.Flags().StringVar(&holdingSymbol, "symbol", "", "Ticker symbol (required)")
	holdingAddCmd.Flags().StringVar(&holdingType, "type", string(models.HoldingStock), "stock, etf, fund, bond, crypto or other")
	holdingAddCmd.Flags().StringVar(&holdingUnits, "units", "0", "Opening units")
	holdingAddCmd.Flags().StringVar(&holdingCost, "cost", "0", "Opening cost basis")
	holdingAddCmd.MarkFlagRequired("account")
	holdingAddCmd.MarkFlagRequired("symbol")

	for _, c := range []*cobra.Command{holdingBuyCmd, holdingSellCmd} {
		c.Flags().StringVar(&holdingUnits, "units", "", "Units traded (required)")
		c.Flags().StringVar(&holdingPrice, "price", "", "Price per unit (required)")
		c.MarkFlagRequired("units")
		c.MarkFlagRequired("price")
	}
	holdingFeeCmd.Flags().StringVar(&holdingAmount, "amount", "", "Fee amount (required)")
	holdingFeeCmd.MarkFlagRequired("amount")
	holdingDividendCmd.Flags().StringVar(&holdingAmount, "amount", "", "Cash amount received (required)")
	holdingDividendCmd.Flags().StringVar(&holdingFranking, "franking", "", "Franked percentage, 0 to 100")
	holdingDividendCmd.Flags().BoolVar(&holdingDistrib, "distribution", false, "Record as a fund distribution")
	holdingDividendCmd.MarkFlagRequired("amount")

	for _, c := range []*cobra.Command{holdingBuyCmd, holdingSellCmd, holdingFeeCmd, holdingDividendCmd} {
		c.Flags().StringVar(&holdingFees, "fees", "0", "Brokerage or other fees")
		c.Flags().StringVar(&holdingDate, "date", "", "Date (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&holdingNotes, "notes", "", "Notes")
	}

	holdingRefreshCmd.Flags().BoolVar(&holdingFresh, "fresh", false, "Ignore cached quotes")

	holdingCmd.AddCommand(
		holdingAddCmd, holdingListCmd,
		holdingBuyCmd, holdingSellCmd, holdingFeeCmd, holdingDividendCmd,
		holdingTxsCmd, holdingDeleteTxCmd, holdingRefreshCmd,
	)
}

func runHoldingAdd(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	units, err := parseUnits(holdingUnits)
	exitOnError(err, "invalid units")
	cost, err := parseMinor(holdingCost)
	exitOnError(err, "invalid cost basis")

	a := openApp(ctx)
	defer a.Close()

	h, err := a.svc.CreateHolding(ctx, ledger.NewHolding{
		AccountID: holdingAccount,
		Symbol:    holdingSymbol,
		Type:      models.HoldingType(holdingType),
		Units:     units,
		CostBasis: cost,
	})
	exitOnError(err, "failed to create holding")

	fmt.Printf("Created holding %s (%s)\n", h.Symbol, h.ID)
}

func runHoldingList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	holdings, err := a.svc.ListHoldings(ctx)
	exitOnError(err, "failed to list holdings")
	currencies := accountCurrencies(ctx, a)

	if len(holdings) == 0 {
		fmt.Println("No holdings")
		return
	}
	for _, h := range holdings {
		cur := currencies[h.AccountID]
		value := "-"
		if mv, ok := h.MarketValue(); ok {
			value = displayMoney(mv, cur)
		}
		fmt.Printf("%s  %-8s  %-6s  %12s  %14s  %14s\n",
			h.ID, h.Symbol, h.Type, h.Units.String(), displayMoney(h.CostBasis, cur), value)
	}
}

func runTrade(holdingID string, typ models.InvestmentType) {
	ctx := context.Background()

	units, err := parseUnits(holdingUnits)
	exitOnError(err, "invalid units")
	price, err := parseMinor(holdingPrice)
	exitOnError(err, "invalid price")

	addInvestment(ctx, ledger.NewInvestmentTransaction{
		HoldingID:    holdingID,
		Type:         typ,
		Units:        units,
		PricePerUnit: price,
	})
}

func runHoldingFee(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	amount, err := parsePositiveAmount(holdingAmount)
	exitOnError(err, "invalid amount")

	addInvestment(ctx, ledger.NewInvestmentTransaction{
		HoldingID:    args[0],
		Type:         models.InvestmentFee,
		PricePerUnit: amount,
	})
}

func runHoldingDividend(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	amount, err := parsePositiveAmount(holdingAmount)
	exitOnError(err, "invalid amount")

	in := ledger.NewInvestmentTransaction{
		HoldingID:    args[0],
		Type:         models.InvestmentDividend,
		PricePerUnit: amount,
	}
	if holdingDistrib {
		in.Type = models.InvestmentDistribution
	}
	if holdingFranking != "" {
		pct, err := decimal.NewFromString(strings.TrimSpace(holdingFranking))
		exitOnError(err, "invalid franking percentage")
		in.FrankingPercentage = &pct
	}

	addInvestment(ctx, in)
}

// addInvestment fills the shared flags into in and records it.
func addInvestment(ctx context.Context, in ledger.NewInvestmentTransaction) {
	fees, err := parseMinor(holdingFees)
	exitOnError(err, "invalid fees")
	date, err := parseDate(holdingDate)
	exitOnError(err, "invalid date")
	in.Fees = fees
	in.Date = date
	in.Notes = holdingNotes

	a := openApp(ctx)
	defer a.Close()

	it, err := a.svc.AddInvestmentTransaction(ctx, in)
	exitOnError(err, "failed to record investment transaction")

	h, err := a.svc.GetHolding(ctx, in.HoldingID)
	exitOnError(err, "failed to load holding")
	cur := accountCurrencies(ctx, a)[h.AccountID]

	fmt.Printf("Recorded %s %s (%s), total %s\n", it.Type, h.Symbol, it.ID, displayMoney(it.TotalAmount, cur))
	if it.FrankingCreditAmount != nil {
		fmt.Printf("Franking credit %s, grossed up %s\n",
			displayMoney(*it.FrankingCreditAmount, cur), displayMoney(*it.GrossedUpAmount, cur))
	}
	fmt.Printf("Holding now %s units, cost basis %s\n", h.Units.String(), displayMoney(h.CostBasis, cur))
}

func runHoldingTxs(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	h, err := a.svc.GetHolding(ctx, args[0])
	exitOnError(err, "failed to load holding")
	cur := accountCurrencies(ctx, a)[h.AccountID]

	txns, err := a.svc.ListInvestmentTransactions(ctx, h.ID)
	exitOnError(err, "failed to list investment transactions")

	for _, it := range txns {
		fmt.Printf("%s  %s  %-12s  %12s  %14s  %s\n",
			it.Date.Format("2006-01-02"), it.ID, it.Type, it.Units.String(), displayMoney(it.TotalAmount, cur), it.Notes)
	}
}

func runHoldingDeleteTx(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	exitOnError(a.svc.DeleteInvestmentTransaction(ctx, args[0]), "failed to delete investment transaction")
	fmt.Printf("Deleted investment transaction %s\n", args[0])
}

func runHoldingRefresh(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	if holdingFresh && a.cache != nil {
		exitOnError(a.cache.Purge(), "failed to purge price cache")
	}

	result, err := a.svc.RefreshPrices(ctx)
	exitOnError(err, "failed to refresh prices")

	if result.Notice != nil {
		printNotice(*result.Notice)
	}
	fmt.Printf("Updated %d holdings\n", result.Updated)
	if len(result.Missing) > 0 {
		fmt.Printf("No quote for: %s\n", strings.Join(result.Missing, ", "))
	}
}

func accountCurrencies(ctx context.Context, a *app) map[string]string {
	accounts, err := a.svc.ListAccounts(ctx)
	exitOnError(err, "failed to list accounts")
	out := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		out[acc.ID] = acc.Currency
	}
	return out
}
