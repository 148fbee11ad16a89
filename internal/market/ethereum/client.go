package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"marketoracle/internal/oracle"
)

// marketABIJSON covers the two PredictionMarket functions the sweep
// uses. Prices on chain are fixed-point cents, bet totals are wei.
const marketABIJSON = `[
  {"type":"function","name":"getMarketInfo","stateMutability":"view",
   "inputs":[{"name":"marketId","type":"uint256"}],
   "outputs":[
     {"name":"symbol","type":"string"},
     {"name":"targetPrice","type":"uint256"},
     {"name":"deadline","type":"uint256"},
     {"name":"totalUpBets","type":"uint256"},
     {"name":"totalDownBets","type":"uint256"},
     {"name":"resolved","type":"bool"},
     {"name":"outcome","type":"bool"},
     {"name":"finalPrice","type":"uint256"}]},
  {"type":"function","name":"resolveMarket","stateMutability":"nonpayable",
   "inputs":[
     {"name":"marketId","type":"uint256"},
     {"name":"finalPrice","type":"uint256"}],
   "outputs":[]}
]`

var marketABI = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(marketABIJSON))
	if err != nil {
		panic(fmt.Sprintf("ethereum: parse market abi: %v", err))
	}
	return a
}()

type Config struct {
	Address string // deployed PredictionMarket contract address
	RPCURL  string
}

// Client implements oracle.MarketContract against an EVM chain. Reads
// go through eth_call; resolves are signed with the TransactOpts the
// caller supplies (signing itself stays with go-ethereum).
type Client struct {
	address  common.Address
	contract *bind.BoundContract
	eth      *ethclient.Client // nil when built over an injected backend
	auth     *bind.TransactOpts
}

// NewClient dials the RPC endpoint and binds the contract. auth may be
// nil for a read-only client; ResolveMarket will refuse to run without it.
func NewClient(ctx context.Context, cfg Config, auth *bind.TransactOpts) (*Client, error) {
	addr := strings.TrimSpace(cfg.Address)
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.Address)
	}
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, errors.New("missing rpc url")
	}
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}
	c := newOver(common.HexToAddress(addr), eth, eth, auth)
	c.eth = eth
	return c, nil
}

// NewClientWithBackend binds the contract over an existing backend.
// Used by tests and by callers that manage their own connection.
func NewClientWithBackend(address common.Address, backend bind.ContractBackend, auth *bind.TransactOpts) *Client {
	return newOver(address, backend, backend, auth)
}

func newOver(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, auth *bind.TransactOpts) *Client {
	return &Client{
		address:  address,
		contract: bind.NewBoundContract(address, marketABI, caller, transactor, nil),
		auth:     auth,
	}
}

// Close releases the RPC connection when the client owns one.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// GetMarketInfo reads one market snapshot via eth_call.
func (c *Client) GetMarketInfo(ctx context.Context, marketID int64) (oracle.MarketInfo, error) {
	var out []any
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getMarketInfo", big.NewInt(marketID))
	if err != nil {
		return oracle.MarketInfo{}, fmt.Errorf("getMarketInfo(%d): %w", marketID, err)
	}
	return decodeMarketInfo(out)
}

// ResolveMarket submits the resolve transaction with the final price in
// cents and returns the transaction hash without waiting for inclusion.
func (c *Client) ResolveMarket(ctx context.Context, marketID, finalPriceCents int64) (oracle.ResolveReceipt, error) {
	if c.auth == nil {
		return oracle.ResolveReceipt{}, errors.New("no transaction signer configured")
	}
	opts := *c.auth
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, "resolveMarket", big.NewInt(marketID), big.NewInt(finalPriceCents))
	if err != nil {
		return oracle.ResolveReceipt{}, fmt.Errorf("resolveMarket(%d, %d): %w", marketID, finalPriceCents, err)
	}
	return oracle.ResolveReceipt{
		MarketID:        marketID,
		FinalPriceCents: finalPriceCents,
		TxHash:          tx.Hash().Hex(),
	}, nil
}

func decodeMarketInfo(out []any) (oracle.MarketInfo, error) {
	if len(out) != 8 {
		return oracle.MarketInfo{}, fmt.Errorf("getMarketInfo: unexpected output arity %d", len(out))
	}
	symbol, ok0 := out[0].(string)
	target, ok1 := out[1].(*big.Int)
	deadline, ok2 := out[2].(*big.Int)
	up, ok3 := out[3].(*big.Int)
	down, ok4 := out[4].(*big.Int)
	resolved, ok5 := out[5].(bool)
	outcome, ok6 := out[6].(bool)
	final, ok7 := out[7].(*big.Int)
	if !(ok0 && ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return oracle.MarketInfo{}, errors.New("getMarketInfo: unexpected output shape")
	}
	info := oracle.MarketInfo{
		Symbol:        symbol,
		TargetPrice:   centsToUSD(target),
		Deadline:      deadline.Int64(),
		TotalUpBets:   weiToEth(up),
		TotalDownBets: weiToEth(down),
		Resolved:      resolved,
		OutcomeUp:     outcome,
	}
	if final.Sign() > 0 {
		info.FinalPrice = centsToUSD(final)
	}
	return info, nil
}

func centsToUSD(v *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), big.NewFloat(100)).Float64()
	return f
}

func weiToEth(v *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), big.NewFloat(1e18)).Float64()
	return f
}
