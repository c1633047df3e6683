package router

import (
	"fmt"
	"math/big"
	"strings"

	"dexledger/native/rewards"
)

// Storage abstracts the state access the router needs for an in-flight trade.
// Callers hand the router a buffered transaction so that nothing it writes
// survives a venue rejection.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	MintToken(symbol string, amount *big.Int) (*big.Int, error)
}

// Side identifies the direction of an order from the caller's perspective.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide normalises a caller-supplied direction string.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SideBuy):
		return SideBuy, nil
	case string(SideSell):
		return SideSell, nil
	}
	return "", fmt.Errorf("router: unknown side %q", raw)
}

// Venue is the external order-matching engine. The router treats it as a
// black box: orders go in, filled amounts come out. Partial fills are a venue
// concern and are passed through untouched.
type Venue interface {
	PlaceMarketOrder(sequence uint64, quantity *big.Int, side Side, baseIn, quoteIn *big.Int) (baseOut, quoteOut *big.Int, err error)
	PlaceLimitOrder(sequence uint64, price, quantity *big.Int, side Side, expiry uint64) error
	DepositBase(amount *big.Int) error
	DepositQuote(amount *big.Int) error
}

// OrderParams carries the caller's market order request.
type OrderParams struct {
	Side     Side
	Quantity *big.Int
	BaseIn   *big.Int
	QuoteIn  *big.Int
}

// Validate rejects malformed order parameters before any state is touched.
func (p OrderParams) Validate() error {
	if _, err := ParseSide(string(p.Side)); err != nil {
		return err
	}
	if p.Quantity == nil || p.Quantity.Sign() <= 0 {
		return fmt.Errorf("router: order quantity must be positive")
	}
	if p.BaseIn != nil && p.BaseIn.Sign() < 0 {
		return fmt.Errorf("router: base input must not be negative")
	}
	if p.QuoteIn != nil && p.QuoteIn.Sign() < 0 {
		return fmt.Errorf("router: quote input must not be negative")
	}
	return nil
}

// Transfer is one non-zero asset leg of a trade result.
type Transfer struct {
	Symbol string
	Amount *big.Int
}

// Result carries the net asset deltas of a completed trade. Any of the
// amounts may be zero; zero legs are never emitted as transfers.
type Result struct {
	OrderSequence uint64
	BaseOut       *big.Int
	QuoteOut      *big.Int
	RewardOut     *big.Int
}

// Router orchestrates a trade: it consults the reward ledger, delegates
// matching to the venue, and mints the reward unit on qualifying trades.
type Router struct {
	baseSymbol   string
	quoteSymbol  string
	rewardSymbol string
	rewardUnit   *big.Int
}

// NewRouter constructs a router for the configured asset pair and reward
// token.
func NewRouter(baseSymbol, quoteSymbol, rewardSymbol string, rewardUnit *big.Int) (*Router, error) {
	for _, symbol := range []string{baseSymbol, quoteSymbol, rewardSymbol} {
		if strings.TrimSpace(symbol) == "" {
			return nil, fmt.Errorf("router: asset symbols required")
		}
	}
	if rewardUnit == nil || rewardUnit.Sign() <= 0 {
		return nil, fmt.Errorf("router: reward unit must be positive")
	}
	return &Router{
		baseSymbol:   baseSymbol,
		quoteSymbol:  quoteSymbol,
		rewardSymbol: rewardSymbol,
		rewardUnit:   new(big.Int).Set(rewardUnit),
	}, nil
}

// Transfers lists the non-zero legs of the result for the router's pair.
func (r *Router) Transfers(res Result) []Transfer {
	if r == nil {
		return nil
	}
	legs := make([]Transfer, 0, 3)
	for _, leg := range []Transfer{
		{Symbol: r.baseSymbol, Amount: res.BaseOut},
		{Symbol: r.quoteSymbol, Amount: res.QuoteOut},
		{Symbol: r.rewardSymbol, Amount: res.RewardOut},
	} {
		if leg.Amount == nil || leg.Amount.Sign() == 0 {
			continue
		}
		legs = append(legs, Transfer{Symbol: leg.Symbol, Amount: new(big.Int).Set(leg.Amount)})
	}
	return legs
}

// ExecuteTrade runs the full trade pipeline against the supplied state
// transaction. The caller owns the transaction lifecycle: a nil error means
// every buffered write may be committed; any error means the transaction must
// be dropped, leaving the swap counter and reward supply at their pre-call
// values. Venue rejections are returned unchanged.
func (r *Router) ExecuteTrade(st Storage, venue Venue, caller [20]byte, params OrderParams) (Result, error) {
	if r == nil {
		return Result{}, fmt.Errorf("router: not configured")
	}
	if st == nil {
		return Result{}, fmt.Errorf("router: storage required")
	}
	if venue == nil {
		return Result{}, fmt.Errorf("router: venue required")
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	decision, err := rewards.RecordTrade(st, caller)
	if err != nil {
		return Result{}, err
	}

	baseOut, quoteOut, err := venue.PlaceMarketOrder(decision.OrderSequence, params.Quantity, params.Side, params.BaseIn, params.QuoteIn)
	if err != nil {
		return Result{}, err
	}
	if baseOut == nil {
		baseOut = big.NewInt(0)
	}
	if quoteOut == nil {
		quoteOut = big.NewInt(0)
	}

	rewardOut := big.NewInt(0)
	if decision.ShouldMint {
		if _, err := rewards.AccrueReward(st); err != nil {
			return Result{}, err
		}
		minted, err := st.MintToken(r.rewardSymbol, r.rewardUnit)
		if err != nil {
			return Result{}, err
		}
		rewardOut = minted
	}

	return Result{
		OrderSequence: decision.OrderSequence,
		BaseOut:       baseOut,
		QuoteOut:      quoteOut,
		RewardOut:     rewardOut,
	}, nil
}
