package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

// AlphaVantage covers the equity quote endpoint. The free tier allows
// 5 requests per minute, hence the rate limit knobs.
type AlphaVantage struct {
	APIKey                string `json:"api_key"`
	Endpoint              string `json:"endpoint"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	Burst                 int    `json:"burst"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
}

type CoinGecko struct {
	APIKey                string `json:"api_key"`
	Endpoint              string `json:"endpoint"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	Burst                 int    `json:"burst"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
}

// Coinbase needs no API key; it is the guaranteed crypto fallback.
type Coinbase struct {
	Endpoint string `json:"endpoint"`
}

type Polygon struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
}

// Contract describes the prediction-market contract the sweep talks to.
type Contract struct {
	Address     string `json:"address"`
	RPCURL      string `json:"rpc_url"`
	ChainID     int64  `json:"chain_id"`
	ResolverKey string `json:"-"` // hex private key, env only, never persisted
}

type Config struct {
	Server       Server       `json:"server"`
	AlphaVantage AlphaVantage `json:"alpha_vantage"`
	CoinGecko    CoinGecko    `json:"coingecko"`
	Coinbase     Coinbase     `json:"coinbase"`
	Polygon      Polygon      `json:"polygon"`
	Contract     Contract     `json:"contract"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 8},
		AlphaVantage: AlphaVantage{
			Endpoint:             "https://www.alphavantage.co/query",
			MaxRequestsPerMinute: 5,
			Burst:                1,
		},
		CoinGecko: CoinGecko{
			Endpoint:             "https://api.coingecko.com/api/v3",
			MaxRequestsPerMinute: 30,
			Burst:                5,
		},
		Coinbase: Coinbase{
			Endpoint: "https://api.coinbase.com/v2",
		},
		Polygon: Polygon{
			Endpoint: "https://api.polygon.io",
		},
		Contract: Contract{
			ChainID: 84532, // base-sepolia
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields so API
// keys stay out of the config file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
	}

	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" { cfg.AlphaVantage.APIKey = v }
	if v := os.Getenv("ALPHA_VANTAGE_ENDPOINT"); v != "" { cfg.AlphaVantage.Endpoint = v }
	if v := os.Getenv("ALPHA_VANTAGE_MAX_RPM"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.AlphaVantage.MaxRequestsPerMinute = x }
	}
	if v := os.Getenv("ALPHA_VANTAGE_BURST"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.AlphaVantage.Burst = x }
	}
	if v := os.Getenv("ALPHA_VANTAGE_MIN_INTERVAL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.AlphaVantage.MinRequestIntervalSec = x }
	}

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" { cfg.CoinGecko.APIKey = v }
	if v := os.Getenv("COINGECKO_ENDPOINT"); v != "" { cfg.CoinGecko.Endpoint = v }
	if v := os.Getenv("COINGECKO_MAX_RPM"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.CoinGecko.MaxRequestsPerMinute = x }
	}
	if v := os.Getenv("COINGECKO_BURST"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.CoinGecko.Burst = x }
	}
	if v := os.Getenv("COINGECKO_MIN_INTERVAL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.CoinGecko.MinRequestIntervalSec = x }
	}

	if v := os.Getenv("COINBASE_ENDPOINT"); v != "" { cfg.Coinbase.Endpoint = v }

	if v := os.Getenv("POLYGON_API_KEY"); v != "" { cfg.Polygon.APIKey = v }
	if v := os.Getenv("POLYGON_ENDPOINT"); v != "" { cfg.Polygon.Endpoint = v }

	if v := os.Getenv("CONTRACT_ADDRESS"); v != "" { cfg.Contract.Address = v }
	if v := os.Getenv("RPC_URL"); v != "" { cfg.Contract.RPCURL = v }
	if v := os.Getenv("CHAIN_ID"); v != "" {
		var x int64; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Contract.ChainID = x }
	}
	if v := os.Getenv("RESOLVER_PRIVATE_KEY"); v != "" { cfg.Contract.ResolverKey = v }
}
