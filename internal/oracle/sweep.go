package oracle

import (
	"context"
	"log"
	"time"
)

// MarketInfo is a read-only snapshot of one prediction market, as
// reported by the contract. Prices are in USD, bet totals in ETH.
type MarketInfo struct {
	Symbol        string
	TargetPrice   float64
	Deadline      int64 // unix seconds
	TotalUpBets   float64
	TotalDownBets float64
	Resolved      bool
	OutcomeUp     bool
	FinalPrice    float64 // zero until resolved
}

// ResolveReceipt is the result of a resolve transaction.
type ResolveReceipt struct {
	MarketID        int64
	FinalPriceCents int64
	TxHash          string
}

// MarketContract is the closed set of contract operations the sweep
// needs. The concrete client lives in internal/market/ethereum.
//
//go:generate mockgen -package=oracle -destination=mock_market_contract_test.go -source=sweep.go MarketContract
type MarketContract interface {
	GetMarketInfo(ctx context.Context, marketID int64) (MarketInfo, error)
	ResolveMarket(ctx context.Context, marketID int64, finalPriceCents int64) (ResolveReceipt, error)
}

// ResolveExpiredMarkets walks the given market ids in order and
// resolves each market whose deadline has passed and which is not yet
// resolved, using a fresh oracle price converted to integer cents
// (truncated). Markets are processed sequentially; any per-market
// failure is logged and the sweep moves on, so one bad market can
// never abort the batch.
func (o *Oracle) ResolveExpiredMarkets(ctx context.Context, contract MarketContract, marketIDs []int64) {
	now := time.Now().Unix()
	for _, id := range marketIDs {
		info, err := contract.GetMarketInfo(ctx, id)
		if err != nil {
			log.Printf("oracle: market %d: read failed: %v", id, err)
			continue
		}
		if info.Resolved {
			continue
		}
		if info.Deadline >= now {
			continue
		}

		price := o.Price(ctx, info.Symbol)
		cents := int64(price * 100) // contract takes fixed-point cents

		if _, err := contract.ResolveMarket(ctx, id, cents); err != nil {
			log.Printf("oracle: market %d (%s): resolve failed: %v", id, info.Symbol, err)
			continue
		}
		log.Printf("oracle: resolved market %d: %s at $%.2f", id, info.Symbol, price)
	}
}
