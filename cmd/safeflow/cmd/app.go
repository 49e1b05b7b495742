package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/categorize"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/config"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/db"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/prices"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg   *config.Config
	conn  *db.Connection
	svc   *ledger.Service
	cache *prices.Cache
}

// openApp loads configuration, opens the database and wires the ledger
// service with its categoriser, price source and notifier.
func openApp(ctx context.Context) *app {
	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	dbPath := cfg.Paths.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")

	a := &app{cfg: cfg, conn: conn}

	rules, err := categorize.LoadRules(cfg.Paths.GetRulesPath())
	exitOnError(err, "failed to load categorisation rules")
	gemini, err := categorize.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, conn)
	exitOnError(err, "failed to create Gemini client")

	opts := []ledger.Option{
		ledger.WithLogger(slog.Default()),
		ledger.WithCategorizer(categorize.NewChain(slog.Default(), rules, gemini)),
		ledger.WithNotifier(ledger.NotifierFunc(printNotice)),
	}

	if cfg.Prices.APIURL != "" {
		client := prices.NewClient(prices.ClientConfig{
			APIURL:  cfg.Prices.APIURL,
			APIKey:  cfg.Prices.APIKey,
			Timeout: 30 * time.Second,
		})
		cachePath := cfg.Paths.GetPriceCachePath()
		exitOnError(cfg.Paths.EnsureParentDir(cachePath), "failed to create price cache directory")
		a.cache, err = prices.OpenCache(cachePath, client, cfg.Prices.CacheTTL)
		exitOnError(err, "failed to open price cache")
		opts = append(opts, ledger.WithPriceFetcher(a.cache))
	}

	a.svc = ledger.New(conn, opts...)
	return a
}

// Close waits for background categorisation and releases resources.
func (a *app) Close() {
	a.svc.Wait()
	a.svc.Close()
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Warn("Failed to close price cache", "error", err)
		}
	}
	if err := a.conn.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func printNotice(n ledger.Notice) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n)
}
