package alphavantage

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
	Name   string
	URL    string // query endpoint, default https://www.alphavantage.co/query
	APIKey string // required; sent as the apikey query parameter
}

// Provider fetches equity quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint.
type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "AlphaVantage" }
	if cfg.URL == "" { cfg.URL = "https://www.alphavantage.co/query" }
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil { return provider.Quote{}, err }
	q := u.Query()
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", p.cfg.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil { return provider.Quote{}, err }
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(ctx, req)
	if err != nil { return provider.Quote{}, err }
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Quote{}, &provider.StatusError{Method: http.MethodGet, URL: provider.RedactedURL(u, "apikey"), Code: resp.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return provider.Quote{}, fmt.Errorf("decode: %w", err)
	}
	// Alpha Vantage answers 200 with an empty object (or a "Note" about
	// rate limits) when it has nothing for the symbol.
	if body.GlobalQuote == nil || body.GlobalQuote.Price == "" {
		return provider.Quote{}, provider.NotFound(p.cfg.Name, symbol)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(body.GlobalQuote.Price), 64)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("parse price %q: %w", body.GlobalQuote.Price, err)
	}
	change, _ := strconv.ParseFloat(strings.TrimSpace(body.GlobalQuote.Change), 64)

	return provider.Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         price,
		Change:        change,
		ChangePercent: body.GlobalQuote.ChangePercent,
		Currency:      "USD",
		Source:        provider.SourceAlphaVantage,
		ReceivedAt:    time.Now().UTC(),
	}, nil
}

// The quote object keys carry Alpha Vantage's numbered prefixes.
type apiResponse struct {
	GlobalQuote *globalQuote `json:"Global Quote"`
}

type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}
