package oracle

import "strings"

// cryptoIDs maps the closed set of supported crypto tickers to the
// identifier each provider wants. Anything not listed here is treated
// as an equity symbol, which is the deliberate fallback path.
var cryptoIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
}

// Normalize returns the canonical uppercase form of a ticker.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// IsCrypto reports whether the symbol is a known crypto ticker.
// Case-insensitive; unknown symbols are not an error, they just route
// to the equity providers.
func IsCrypto(symbol string) bool {
	_, ok := cryptoIDs[Normalize(symbol)]
	return ok
}

// CoinGeckoIDs returns a copy of the ticker -> coin id mapping for the
// CoinGecko adapter.
func CoinGeckoIDs() map[string]string {
	out := make(map[string]string, len(cryptoIDs))
	for k, v := range cryptoIDs {
		out[k] = v
	}
	return out
}
