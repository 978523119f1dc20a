package finnacle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultQuoteBaseURL = "https://query1.finance.yahoo.com"

// Quote lookup errors. Use errors.Is() to check for these conditions.
var (
	// ErrNoQuote indicates the provider returned no usable price for the symbol.
	ErrNoQuote = errors.New("no quote data available")
	// ErrQuoteCooldown indicates the symbol is cooling down after a recent failure.
	ErrQuoteCooldown = errors.New("quote lookup cooling down")
)

// HTTPDoer is an interface for making HTTP requests. It enables dependency
// injection for testing without network calls.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Quote is a tagged success value from the live quote provider.
type Quote struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"currentPrice"`
}

type quoteFetcherOptions struct {
	Logger   *slog.Logger
	BaseURL  string
	CacheTTL time.Duration
	Cooldown time.Duration
	Timeout  time.Duration
	Client   HTTPDoer
}

// quoteFetcher resolves live prices with a short-lived cache and a
// per-symbol failure cooldown so one flaky ticker cannot hammer the
// provider on every portfolio view.
type quoteFetcher struct {
	logger   *slog.Logger
	baseURL  string
	cacheTTL time.Duration
	cooldown time.Duration
	timeout  time.Duration
	client   HTTPDoer

	mu      sync.Mutex
	cache   map[string]cachedQuote
	failing map[string]time.Time
}

type cachedQuote struct {
	quote Quote
	ts    time.Time
}

func newQuoteFetcher(opts quoteFetcherOptions) *quoteFetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultQuoteBaseURL
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &quoteFetcher{
		logger:   logger,
		baseURL:  baseURL,
		cacheTTL: opts.CacheTTL,
		cooldown: opts.Cooldown,
		timeout:  opts.Timeout,
		client:   client,
		cache:    map[string]cachedQuote{},
		failing:  map[string]time.Time{},
	}
}

// yahooQuoteResponse matches the v7 /finance/quote payload.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// fetch resolves the current price for a symbol. Failures are returned as
// errors, never as zero prices; the caller decides how to degrade.
func (qf *quoteFetcher) fetch(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, NewError(ErrCodeInvalidInput, "symbol is required")
	}

	now := time.Now()
	qf.mu.Lock()
	if entry, ok := qf.cache[symbol]; ok && now.Sub(entry.ts) < qf.cacheTTL {
		qf.mu.Unlock()
		return entry.quote, nil
	}
	if until, ok := qf.failing[symbol]; ok && now.Before(until) {
		qf.mu.Unlock()
		return Quote{}, fmt.Errorf("%w: %s until %s", ErrQuoteCooldown, symbol, until.Format(time.RFC3339))
	}
	qf.mu.Unlock()

	quote, err := qf.lookup(ctx, symbol)
	qf.mu.Lock()
	defer qf.mu.Unlock()
	if err != nil {
		qf.failing[symbol] = time.Now().Add(qf.cooldown)
		return Quote{}, err
	}
	delete(qf.failing, symbol)
	qf.cache[symbol] = cachedQuote{quote: quote, ts: time.Now()}
	return quote, nil
}

func (qf *quoteFetcher) lookup(ctx context.Context, symbol string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", qf.baseURL, url.QueryEscape(symbol))

	ctx, cancel := context.WithTimeout(ctx, qf.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "finnacle/1.0")

	resp, err := qf.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quote request for %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote provider returned %d for %s", resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("read quote response: %w", err)
	}
	var parsed yahooQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Quote{}, fmt.Errorf("decode quote response: %w", err)
	}
	if parsed.QuoteResponse.Error != nil {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoQuote, parsed.QuoteResponse.Error.Description)
	}
	for _, result := range parsed.QuoteResponse.Result {
		if !strings.EqualFold(result.Symbol, symbol) || result.RegularMarketPrice == nil {
			continue
		}
		return Quote{Symbol: result.Symbol, CurrentPrice: *result.RegularMarketPrice}, nil
	}
	return Quote{}, fmt.Errorf("%w: %s", ErrNoQuote, symbol)
}
