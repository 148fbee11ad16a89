package provider

import (
	"context"
	"time"
)

// Source identifies the upstream API a quote came from.
type Source string

const (
	SourceAlphaVantage Source = "alpha_vantage"
	SourceCoinGecko    Source = "coingecko"
	SourceCoinbase     Source = "coinbase"
	SourcePolygon      Source = "polygon"
)

// Quote is the normalized shape returned by all providers.
// Price is always quoted in USD; Change/ChangePercent are set only by
// providers that report them.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent string    `json:"change_percent,omitempty"`
	Currency      string    `json:"currency"`
	Source        Source    `json:"source"`
	ReceivedAt    time.Time `json:"received_at"`
}

// Provider fetches a single fresh quote for a symbol. Implementations
// issue exactly one upstream call per Fetch, with no internal retry.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (Quote, error)
}
