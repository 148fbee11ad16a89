package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketoracle/internal/httpx"
	"marketoracle/internal/provider"
)

type Config struct {
	Name   string
	URL    string            // API base, default https://api.coingecko.com/api/v3
	APIKey string            // demo key; sent as the x-cg-demo-api-key header
	IDMap  map[string]string // canonical ticker -> coin id (e.g. BTC -> bitcoin)
}

// Provider fetches crypto quotes from the CoinGecko simple-price
// endpoint. Tickers are translated to coin ids via IDMap.
type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "CoinGecko" }
	if cfg.URL == "" { cfg.URL = "https://api.coingecko.com/api/v3" }
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	id := p.cfg.IDMap[strings.ToUpper(symbol)]
	if id == "" {
		return provider.Quote{}, provider.NotFound(p.cfg.Name, symbol)
	}

	u, err := url.Parse(p.cfg.URL + "/simple/price")
	if err != nil { return provider.Quote{}, err }
	q := u.Query()
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil { return provider.Quote{}, err }
	req.Header.Set("Accept", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.cfg.APIKey)
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil { return provider.Quote{}, err }
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Quote{}, &provider.StatusError{Method: http.MethodGet, URL: u.String(), Code: resp.StatusCode}
	}

	// Keyed by coin id: {"bitcoin": {"usd": 67012.3, "usd_24h_change": -1.2}}
	var body map[string]coinEntry
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return provider.Quote{}, fmt.Errorf("decode: %w", err)
	}
	entry, ok := body[id]
	if !ok || entry.USD == nil {
		return provider.Quote{}, provider.NotFound(p.cfg.Name, symbol)
	}

	quote := provider.Quote{
		Symbol:     strings.ToUpper(symbol),
		Price:      *entry.USD,
		Currency:   "USD",
		Source:     provider.SourceCoinGecko,
		ReceivedAt: time.Now().UTC(),
	}
	if entry.USD24hChange != nil {
		quote.Change = *entry.USD24hChange
	}
	return quote, nil
}

type coinEntry struct {
	USD          *float64 `json:"usd"`
	USD24hChange *float64 `json:"usd_24h_change"`
}
