package polygon

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
	URL    string // API base, default https://api.polygon.io
	APIKey string // required; sent as the apiKey query parameter
	Crypto bool   // query the X:<SYM>USD crypto aggregate instead of the stock ticker
}

// Provider fetches prior-close aggregates from Polygon.io. The price
// reported is the previous session's close.
type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "Polygon" }
	if cfg.URL == "" { cfg.URL = "https://api.polygon.io" }
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	sym := strings.ToUpper(symbol)
	ticker := sym
	if p.cfg.Crypto {
		ticker = "X:" + sym + "USD"
	}

	u, err := url.Parse(fmt.Sprintf("%s/v2/aggs/ticker/%s/prev", p.cfg.URL, url.PathEscape(ticker)))
	if err != nil { return provider.Quote{}, err }
	q := u.Query()
	q.Set("apiKey", p.cfg.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil { return provider.Quote{}, err }
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(ctx, req)
	if err != nil { return provider.Quote{}, err }
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Quote{}, &provider.StatusError{Method: http.MethodGet, URL: provider.RedactedURL(u, "apiKey"), Code: resp.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return provider.Quote{}, fmt.Errorf("decode: %w", err)
	}
	if len(body.Results) == 0 {
		return provider.Quote{}, provider.NotFound(p.cfg.Name, symbol)
	}

	bar := body.Results[0]
	return provider.Quote{
		Symbol:     sym,
		Price:      bar.Close,
		Currency:   "USD",
		Source:     provider.SourcePolygon,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

type apiResponse struct {
	Ticker       string `json:"ticker"`
	ResultsCount int    `json:"resultsCount"`
	Results      []bar  `json:"results"`
}

type bar struct {
	Close  float64 `json:"c"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Volume float64 `json:"v"`
}
