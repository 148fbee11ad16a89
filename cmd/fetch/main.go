package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"marketoracle/internal/config"
	"marketoracle/internal/httpx"
	"marketoracle/internal/oracle"
)

func main() {
	var symbol string
	var timeout int
	var configPath string
	var bestEffort bool

	flag.StringVar(&symbol, "symbol", getenv("SYMBOL", "BTC"), "ticker to look up (e.g. BTC, TSLA)")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (0 = config value)")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.BoolVar(&bestEffort, "best-effort", false, "print the fallback price instead of failing")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil { log.Fatalf("config: %v", err) }
	overrideTimeout(&cfg, timeout)

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	o := oracle.New(cfg, httpClient)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	if bestEffort {
		fmt.Printf("%s: $%.2f\n", oracle.Normalize(symbol), o.Price(ctx, symbol))
		return
	}

	q, err := o.Quote(ctx, symbol)
	if err != nil { log.Fatalf("quote %s: %v", symbol, err) }
	b, _ := json.MarshalIndent(q, "", "  ")
	fmt.Println(string(b))
}

// overrideTimeout applies the -timeout flag on top of the loaded config.
// Zero means the flag was not passed, so the config value stands.
func overrideTimeout(cfg *config.Config, sec int) {
	if sec > 0 { cfg.Server.RequestTimeoutSec = sec }
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
