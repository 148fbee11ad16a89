package oracle

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"marketoracle/internal/config"
	"marketoracle/internal/httpx"
	"marketoracle/internal/provider"
	"marketoracle/internal/provider/alphavantage"
	"marketoracle/internal/provider/coinbase"
	"marketoracle/internal/provider/coingecko"
	"marketoracle/internal/provider/polygon"
	"marketoracle/internal/provider/ratelimit"
)

// FallbackPrice is returned by Price when every real lookup fails.
// Callers that need to trust a quote should use Quote instead, which
// surfaces the error.
const FallbackPrice = 100.0

// ErrNoProviderConfigured means no equity data provider has an API key.
// There is no keyless equity source, so the stock path cannot degrade
// the way the crypto path does.
var ErrNoProviderConfigured = errors.New("no stock provider configured: set ALPHA_VANTAGE_API_KEY or POLYGON_API_KEY")

// ErrUnknownCrypto is returned by CryptoQuote for symbols outside the
// supported crypto set.
var ErrUnknownCrypto = errors.New("unknown crypto symbol")

// Oracle resolves a ticker to a fresh USD quote by dispatching to
// exactly one upstream provider per call. Provider selection depends
// only on which API keys were configured at construction, so it is
// deterministic for the life of the process.
type Oracle struct {
	crypto []provider.Provider // preference order; last entry is keyless
	stock  []provider.Provider // preference order; may be empty

	sf singleflight.Group
}

// New builds an Oracle from the loaded credentials. Keys are read once
// here; the Oracle never consults the environment afterwards.
func New(cfg config.Config, hc *httpx.Client) *Oracle {
	o := &Oracle{}

	if cfg.CoinGecko.APIKey != "" {
		var p provider.Provider = coingecko.New(coingecko.Config{
			URL:    cfg.CoinGecko.Endpoint,
			APIKey: cfg.CoinGecko.APIKey,
			IDMap:  CoinGeckoIDs(),
		}, hc)
		if cfg.CoinGecko.MaxRequestsPerMinute > 0 {
			p = rateLimited(p, cfg.CoinGecko.MaxRequestsPerMinute, cfg.CoinGecko.Burst)
		}
		if cfg.CoinGecko.MinRequestIntervalSec > 0 {
			p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.CoinGecko.MinRequestIntervalSec) * time.Second}
		}
		o.crypto = append(o.crypto, p)
	}
	// Coinbase needs no key, so the crypto path always has a provider.
	o.crypto = append(o.crypto, coinbase.New(coinbase.Config{URL: cfg.Coinbase.Endpoint}, hc))

	if cfg.AlphaVantage.APIKey != "" {
		var p provider.Provider = alphavantage.New(alphavantage.Config{
			URL:    cfg.AlphaVantage.Endpoint,
			APIKey: cfg.AlphaVantage.APIKey,
		}, hc)
		if cfg.AlphaVantage.MaxRequestsPerMinute > 0 {
			p = rateLimited(p, cfg.AlphaVantage.MaxRequestsPerMinute, cfg.AlphaVantage.Burst)
		}
		if cfg.AlphaVantage.MinRequestIntervalSec > 0 {
			p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.AlphaVantage.MinRequestIntervalSec) * time.Second}
		}
		o.stock = append(o.stock, p)
	}
	if cfg.Polygon.APIKey != "" {
		o.stock = append(o.stock, polygon.New(polygon.Config{
			URL:    cfg.Polygon.Endpoint,
			APIKey: cfg.Polygon.APIKey,
		}, hc))
	}

	return o
}

func rateLimited(p provider.Provider, rpm, burst int) provider.Provider {
	if burst <= 0 { burst = 1 }
	return &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(float64(rpm)/60.0, burst)}
}

// CryptoQuote fetches a quote for a known crypto ticker from the first
// configured crypto provider. Symbols outside the supported set error;
// call Quote for the classify-then-route behavior.
func (o *Oracle) CryptoQuote(ctx context.Context, symbol string) (provider.Quote, error) {
	sym := Normalize(symbol)
	if !IsCrypto(sym) {
		return provider.Quote{}, ErrUnknownCrypto
	}
	return o.crypto[0].Fetch(ctx, sym)
}

// StockQuote fetches an equity quote from the first configured stock
// provider. With no equity key configured it fails; the error is typed
// so Price can degrade and other callers can report it.
func (o *Oracle) StockQuote(ctx context.Context, symbol string) (provider.Quote, error) {
	if len(o.stock) == 0 {
		return provider.Quote{}, ErrNoProviderConfigured
	}
	return o.stock[0].Fetch(ctx, Normalize(symbol))
}

// Quote classifies the symbol and fetches from the selected provider.
// A failed provider call is not retried against another provider; the
// typed error propagates. Concurrent calls for the same symbol are
// coalesced into one upstream request (they observe the same instant,
// so this is not a cache).
func (o *Oracle) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	sym := Normalize(symbol)
	v, err, _ := o.sf.Do(sym, func() (any, error) {
		if IsCrypto(sym) {
			return o.CryptoQuote(ctx, sym)
		}
		return o.StockQuote(ctx, sym)
	})
	if err != nil {
		return provider.Quote{}, err
	}
	return v.(provider.Quote), nil
}

// Price is the best-effort universal getter. Any failure in the chain
// (configuration, transport, missing data) is logged and swallowed,
// and FallbackPrice comes back instead. This is the only place errors
// are turned into a value.
func (o *Oracle) Price(ctx context.Context, symbol string) float64 {
	q, err := o.Quote(ctx, symbol)
	if err != nil {
		log.Printf("oracle: price %s: %v (returning fallback %.2f)", symbol, err, FallbackPrice)
		return FallbackPrice
	}
	return q.Price
}

// WithTimeout derives a bounded context for a single lookup; upstream
// providers are third parties and must not stall callers indefinitely.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 8 * time.Second
	}
	return context.WithTimeout(ctx, d)
}
