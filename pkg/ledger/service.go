// Package ledger keeps account balances, transaction history and holding cost
// basis consistent.
//
// Every mutation runs inside one atomic unit of work of the injected
// store.Store. Enrichment (categorisation of imported rows) runs after commit
// and never affects the result of the mutation that triggered it.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

// Categorizer suggests categories for transactions.
type Categorizer interface {
	IsAvailable() bool
	// Categorize returns suggestions keyed by transaction ID.
	Categorize(ctx context.Context, rows []models.Transaction) (map[string]models.Categorization, error)
}

// PriceFetcher returns current quotes keyed by symbol.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, symbols []string) (map[string]models.Quote, error)
}

// Service is the ledger. Create one per store with New.
type Service struct {
	store       store.Store
	logger      *slog.Logger
	categorizer Categorizer
	prices      PriceFetcher
	notifier    Notifier
	now         func() time.Time
	newID       func() string

	// enrichment
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCategorizer enables post-import categorisation.
func WithCategorizer(c Categorizer) Option {
	return func(s *Service) { s.categorizer = c }
}

// WithPriceFetcher enables RefreshPrices.
func WithPriceFetcher(p PriceFetcher) Option {
	return func(s *Service) { s.prices = p }
}

// WithNotifier receives user-visible notices from enrichment.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a ledger service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Wait blocks until in-flight enrichment has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight enrichment and waits for it to stop.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}
