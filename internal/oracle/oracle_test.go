package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketoracle/internal/config"
	"marketoracle/internal/httpx"
	"marketoracle/internal/provider"
	"marketoracle/internal/provider/ratelimit"
)

type fakeProvider struct {
	name  string
	quote provider.Quote
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Fetch(_ context.Context, symbol string) (provider.Quote, error) {
	f.calls++
	if f.err != nil {
		return provider.Quote{}, f.err
	}
	q := f.quote
	q.Symbol = symbol
	q.ReceivedAt = time.Now().UTC()
	return q, nil
}

func TestIsCrypto(t *testing.T) {
	t.Parallel()

	require.True(t, IsCrypto("BTC"))
	require.True(t, IsCrypto("btc"))
	require.True(t, IsCrypto("  eth "))
	// Unknown tickers are equities by policy, not an error.
	require.False(t, IsCrypto("TSLA"))
	require.False(t, IsCrypto("DOGE"))
	require.False(t, IsCrypto(""))
}

func TestCryptoQuote_PrefersFirstProvider(t *testing.T) {
	t.Parallel()

	gecko := &fakeProvider{name: "CoinGecko", quote: provider.Quote{Price: 67000.1, Source: provider.SourceCoinGecko}}
	cb := &fakeProvider{name: "Coinbase", quote: provider.Quote{Price: 66990.0, Source: provider.SourceCoinbase}}
	o := &Oracle{crypto: []provider.Provider{gecko, cb}}

	q, err := o.CryptoQuote(t.Context(), "BTC")
	require.NoError(t, err)
	require.Equal(t, provider.SourceCoinGecko, q.Source)
	require.Equal(t, 67000.1, q.Price)
	require.Zero(t, cb.calls)
}

func TestCryptoQuote_UnknownSymbol(t *testing.T) {
	t.Parallel()

	cb := &fakeProvider{name: "Coinbase", quote: provider.Quote{Price: 1.0, Source: provider.SourceCoinbase}}
	o := &Oracle{crypto: []provider.Provider{cb}}

	_, err := o.CryptoQuote(t.Context(), "DOGE")
	require.ErrorIs(t, err, ErrUnknownCrypto)
	require.Zero(t, cb.calls)
}

func TestStockQuote_NoProviderConfigured(t *testing.T) {
	t.Parallel()

	o := &Oracle{crypto: []provider.Provider{&fakeProvider{name: "Coinbase"}}}

	_, err := o.StockQuote(t.Context(), "TSLA")
	require.ErrorIs(t, err, ErrNoProviderConfigured)
}

func TestQuote_NoRetryAcrossProviders(t *testing.T) {
	t.Parallel()

	// The selected provider failing must propagate, never silently fall
	// through to the next provider in the order.
	boom := errors.New("upstream down")
	gecko := &fakeProvider{name: "CoinGecko", err: boom}
	cb := &fakeProvider{name: "Coinbase", quote: provider.Quote{Price: 66990.0, Source: provider.SourceCoinbase}}
	o := &Oracle{crypto: []provider.Provider{gecko, cb}}

	_, err := o.Quote(t.Context(), "BTC")
	require.ErrorIs(t, err, boom)
	require.Zero(t, cb.calls)
}

func TestPrice_FallbackOnError(t *testing.T) {
	t.Parallel()

	// Equity path with no provider: the error is swallowed into the
	// sentinel, not raised.
	o := &Oracle{crypto: []provider.Provider{&fakeProvider{name: "Coinbase"}}}

	require.Equal(t, FallbackPrice, o.Price(t.Context(), "TSLA"))
}

func TestPrice_RealQuote(t *testing.T) {
	t.Parallel()

	cb := &fakeProvider{name: "Coinbase", quote: provider.Quote{Price: 67012.35, Source: provider.SourceCoinbase}}
	o := &Oracle{crypto: []provider.Provider{cb}}

	require.Equal(t, 67012.35, o.Price(t.Context(), "BTC"))
}

func TestNew_CryptoFallsBackToCoinbase_WithoutGeckoKey(t *testing.T) {
	t.Parallel()

	// Arrange: only the keyless Coinbase endpoint is reachable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/exchange-rates", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": {"currency": "BTC", "rates": {"USD": "67012.35"}}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Coinbase.Endpoint = srv.URL
	o := New(cfg, httpx.New(5*time.Second))

	// Act
	q, err := o.CryptoQuote(t.Context(), "BTC")
	require.NoError(t, err)

	// Assert: the keyless provider answered and tagged the quote.
	require.Equal(t, provider.SourceCoinbase, q.Source)
	require.Greater(t, q.Price, 0.0)
	require.Greater(t, o.Price(t.Context(), "BTC"), 0.0)
}

func TestNew_CryptoPrefersCoinGecko_WithKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/simple/price", r.URL.Path)
		require.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"bitcoin": {"usd": 67000.1}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.CoinGecko.APIKey = "demo-key"
	cfg.CoinGecko.Endpoint = srv.URL
	cfg.CoinGecko.MaxRequestsPerMinute = 0 // no limiter in tests
	o := New(cfg, httpx.New(5*time.Second))

	q, err := o.CryptoQuote(t.Context(), "BTC")
	require.NoError(t, err)
	require.Equal(t, provider.SourceCoinGecko, q.Source)
	require.Equal(t, 67000.1, q.Price)
}

func TestNew_AppliesRateLimiters(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CoinGecko.APIKey = "demo-key"
	cfg.AlphaVantage.APIKey = "demo-key"
	o := New(cfg, httpx.New(5*time.Second))

	// Default rpm knobs are positive, so keyed providers get bucketed.
	require.IsType(t, &ratelimit.TokenBucketProvider{}, o.crypto[0])
	require.IsType(t, &ratelimit.TokenBucketProvider{}, o.stock[0])

	// A min-interval knob stacks its gate outermost.
	cfg.AlphaVantage.MinRequestIntervalSec = 12
	o = New(cfg, httpx.New(5*time.Second))
	require.IsType(t, &ratelimit.MinInterval{}, o.stock[0])

	// Zeroed knobs leave the provider bare.
	cfg.CoinGecko.MaxRequestsPerMinute = 0
	o = New(cfg, httpx.New(5*time.Second))
	require.Equal(t, "CoinGecko", o.crypto[0].Name())
	_, bucketed := o.crypto[0].(*ratelimit.TokenBucketProvider)
	require.False(t, bucketed)
}

func TestQuote_Idempotent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"currency": "ETH", "rates": {"USD": "3504.5"}}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Coinbase.Endpoint = srv.URL
	o := New(cfg, httpx.New(5*time.Second))

	q1, err := o.Quote(t.Context(), "ETH")
	require.NoError(t, err)
	q2, err := o.Quote(t.Context(), "ETH")
	require.NoError(t, err)

	// Identical fixture -> identical quote, timestamp aside.
	q2.ReceivedAt = q1.ReceivedAt
	require.Equal(t, q1, q2)
}
