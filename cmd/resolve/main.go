package main

import (
	"context"
	"flag"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"

	"marketoracle/internal/config"
	"marketoracle/internal/httpx"
	ethmarket "marketoracle/internal/market/ethereum"
	"marketoracle/internal/oracle"
)

// Sweeps the given prediction markets: every unresolved market whose
// deadline has passed gets resolved on chain at the current oracle
// price. Meant to run from cron.
func main() {
	var marketsCSV string
	var configPath string
	var timeout int
	var dryRun bool

	flag.StringVar(&marketsCSV, "markets", "", "comma-separated market ids to sweep (required)")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", 60, "overall sweep timeout seconds")
	flag.BoolVar(&dryRun, "dry-run", false, "only report which markets are due, resolve nothing")
	flag.Parse()

	_ = godotenv.Load()

	ids, err := parseIDs(marketsCSV)
	if err != nil { log.Fatalf("markets: %v", err) }
	if len(ids) == 0 { log.Fatal("no market ids given; use -markets 1,2,3") }

	cfg, err := config.Load(configPath)
	if err != nil { log.Fatalf("config: %v", err) }
	if cfg.Contract.Address == "" { log.Fatal("CONTRACT_ADDRESS not set") }
	if cfg.Contract.RPCURL == "" { log.Fatal("RPC_URL not set") }

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	var auth *bind.TransactOpts
	if !dryRun {
		if cfg.Contract.ResolverKey == "" {
			log.Fatal("RESOLVER_PRIVATE_KEY not set (use -dry-run for a read-only sweep)")
		}
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Contract.ResolverKey, "0x"))
		if err != nil { log.Fatalf("resolver key: %v", err) }
		auth, err = bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.Contract.ChainID))
		if err != nil { log.Fatalf("transactor: %v", err) }
	}

	contract, err := ethmarket.NewClient(ctx, ethmarket.Config{
		Address: cfg.Contract.Address,
		RPCURL:  cfg.Contract.RPCURL,
	}, auth)
	if err != nil { log.Fatalf("contract: %v", err) }
	defer contract.Close()

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	o := oracle.New(cfg, httpClient)

	if dryRun {
		now := time.Now().Unix()
		for _, id := range ids {
			info, err := contract.GetMarketInfo(ctx, id)
			if err != nil {
				log.Printf("market %d: read failed: %v", id, err)
				continue
			}
			switch {
			case info.Resolved:
				log.Printf("market %d (%s): already resolved at $%.2f", id, info.Symbol, info.FinalPrice)
			case info.Deadline >= now:
				log.Printf("market %d (%s): not due until %s", id, info.Symbol, time.Unix(info.Deadline, 0).UTC())
			default:
				log.Printf("market %d (%s): due, would resolve", id, info.Symbol)
			}
		}
		return
	}

	o.ResolveExpiredMarkets(ctx, contract, ids)
}

func parseIDs(csv string) ([]int64, error) {
	parts := strings.Split(csv, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" { continue }
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil { return nil, err }
		out = append(out, id)
	}
	return out, nil
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
