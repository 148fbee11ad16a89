package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketoracle/internal/httpx"
	"marketoracle/internal/provider"
)

type Config struct {
	Name string
	URL  string // API base, default https://api.coinbase.com/v2
}

// Provider fetches crypto quotes from the Coinbase exchange-rates
// endpoint. No API key is needed, which makes it the guaranteed
// fallback for known crypto symbols.
type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "Coinbase" }
	if cfg.URL == "" { cfg.URL = "https://api.coinbase.com/v2" }
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	sym := strings.ToUpper(symbol)

	u, err := url.Parse(p.cfg.URL + "/exchange-rates")
	if err != nil { return provider.Quote{}, err }
	q := u.Query()
	q.Set("currency", sym)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil { return provider.Quote{}, err }
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(ctx, req)
	if err != nil { return provider.Quote{}, err }
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Quote{}, &provider.StatusError{Method: http.MethodGet, URL: u.String(), Code: resp.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return provider.Quote{}, fmt.Errorf("decode: %w", err)
	}
	if body.Data == nil || body.Data.Rates == nil {
		return provider.Quote{}, provider.NotFound(p.cfg.Name, symbol)
	}
	// Rates map quote currencies to string-encoded amounts of the
	// requested currency; USD is the only one we care about.
	usd, ok := body.Data.Rates["USD"]
	if !ok {
		return provider.Quote{}, provider.NotFound(p.cfg.Name, symbol)
	}
	price, err := strconv.ParseFloat(usd, 64)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("parse rate %q: %w", usd, err)
	}

	return provider.Quote{
		Symbol:     sym,
		Price:      price,
		Currency:   "USD",
		Source:     provider.SourceCoinbase,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

type apiResponse struct {
	Data *exchangeRates `json:"data"`
}

type exchangeRates struct {
	Currency string            `json:"currency"`
	Rates    map[string]string `json:"rates"`
}
