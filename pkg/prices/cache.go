package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// BucketQuotes holds cached quotes keyed by symbol.
const BucketQuotes = "quotes"

type cachedQuote struct {
	Quote     models.Quote `json:"quote"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Cache serves recent quotes from a bbolt file and fetches the rest.
type Cache struct {
	db      *bolt.DB
	fetcher ledger.PriceFetcher
	ttl     time.Duration
	now     func() time.Time
}

var _ ledger.PriceFetcher = (*Cache)(nil)

// OpenCache opens or creates the cache file at path.
func OpenCache(path string, fetcher ledger.PriceFetcher, ttl time.Duration) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open price cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketQuotes)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketQuotes, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db, fetcher: fetcher, ttl: ttl, now: time.Now}, nil
}

// Close closes the cache file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FetchPrices returns cached quotes younger than the TTL and fetches the others.
func (c *Cache) FetchPrices(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	out := make(map[string]models.Quote, len(symbols))
	var misses []string

	now := c.now()
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketQuotes))
		for _, sym := range symbols {
			data := b.Get([]byte(sym))
			if data == nil {
				misses = append(misses, sym)
				continue
			}
			var cq cachedQuote
			if err := json.Unmarshal(data, &cq); err != nil || now.Sub(cq.FetchedAt) >= c.ttl {
				misses = append(misses, sym)
				continue
			}
			out[sym] = cq.Quote
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read price cache: %w", err)
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.fetcher.FetchPrices(ctx, misses)
	if err != nil {
		return nil, err
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketQuotes))
		for sym, q := range fetched {
			data, err := json.Marshal(cachedQuote{Quote: q, FetchedAt: now})
			if err != nil {
				return fmt.Errorf("failed to marshal quote: %w", err)
			}
			if err := b.Put([]byte(sym), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write price cache: %w", err)
	}

	for sym, q := range fetched {
		out[sym] = q
	}
	return out, nil
}

// Purge removes every cached quote.
func (c *Cache) Purge() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketQuotes)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(BucketQuotes))
		return err
	})
}
