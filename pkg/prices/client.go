// Package prices fetches market quotes for holdings.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// maxSymbolsPerRequest bounds the symbols query parameter.
const maxSymbolsPerRequest = 50

// ClientConfig represents the configuration for the quote API client.
type ClientConfig struct {
	APIURL  string
	APIKey  string        // optional bearer token
	Timeout time.Duration // Default: 30 seconds
}

// Client is a quote API client.
//
// It calls GET {APIURL}/quotes?symbols=A,B and expects a JSON array of
// {"symbol", "price", "as_of"} objects with prices in major currency units.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

var _ ledger.PriceFetcher = (*Client)(nil)

// NewClient creates a new quote API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(config.APIURL, "/"),
		apiKey:  config.APIKey,
	}
}

// QuoteResponse is one quote as returned by the API.
type QuoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   *time.Time      `json:"as_of,omitempty"`
}

// ErrorResponse is the API error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchPrices fetches quotes for symbols, in batches. Symbols the API does not
// know are absent from the result.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	out := make(map[string]models.Quote, len(symbols))

	for start := 0; start < len(symbols); start += maxSymbolsPerRequest {
		end := min(start+maxSymbolsPerRequest, len(symbols))

		quotes, err := c.listQuotes(ctx, symbols[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to list quotes (offset=%d): %w", start, err)
		}
		for _, q := range quotes {
			out[q.Symbol] = q
		}
	}

	return out, nil
}

func (c *Client) listQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	queryParams := url.Values{}
	queryParams.Set("symbols", strings.Join(symbols, ","))

	endpoint := fmt.Sprintf("%s/quotes?%s", c.baseURL, queryParams.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var body []QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	now := time.Now().UTC()
	quotes := make([]models.Quote, 0, len(body))
	for _, q := range body {
		if q.Symbol == "" || q.Price.IsNegative() {
			continue
		}
		asOf := now
		if q.AsOf != nil {
			asOf = q.AsOf.UTC()
		}
		quotes = append(quotes, models.Quote{
			Symbol: strings.ToUpper(q.Symbol),
			Price:  ToMinorUnits(q.Price),
			AsOf:   asOf,
		})
	}
	return quotes, nil
}

// ToMinorUnits converts a major-unit amount to cents, rounding half away from zero.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// parseError parses an error response from the quote API.
func (c *Client) parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("quote API error (status %d): failed to read error response", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("quote API error (status %d): %s", resp.StatusCode, string(body))
	}

	if errResp.Message != "" {
		return fmt.Errorf("quote API error (status %d): %s - %s", resp.StatusCode, errResp.Error, errResp.Message)
	}

	return fmt.Errorf("quote API error (status %d): %s", resp.StatusCode, errResp.Error)
}
