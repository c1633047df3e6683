package core

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"dexledger/core/events"
	"dexledger/core/state"
	"dexledger/core/types"
	"dexledger/crypto"
	"dexledger/native/faucet"
	"dexledger/native/rewards"
	"dexledger/native/router"
	"dexledger/observability/metrics"
	"dexledger/storage"
)

// maxRetainedEvents bounds the in-memory event buffer.
const maxRetainedEvents = 1024

// PeriodSource supplies the current faucet period. Periods advance outside
// the ledger; the core only ever reads them.
type PeriodSource interface {
	Current() uint64
}

// Params fixes the closed asset set and reward denomination for a deployment.
type Params struct {
	BaseSymbol        string
	QuoteSymbol       string
	BaseFaucetAmount  *big.Int
	QuoteFaucetAmount *big.Int
	RewardSymbol      string
	RewardUnit        *big.Int
	Seed              router.SeedConfig
}

func (p Params) validate() error {
	symbols := map[string]string{
		"base":   p.BaseSymbol,
		"quote":  p.QuoteSymbol,
		"reward": p.RewardSymbol,
	}
	for label, symbol := range symbols {
		if strings.TrimSpace(symbol) == "" {
			return fmt.Errorf("core: %s symbol required", label)
		}
	}
	if strings.EqualFold(p.RewardSymbol, p.BaseSymbol) || strings.EqualFold(p.RewardSymbol, p.QuoteSymbol) {
		return fmt.Errorf("core: reward token must be distinct from the traded pair")
	}
	return nil
}

// Ledger is the single owning root for all persistent state: swap counters,
// faucet cooldown records, token supplies, and the seeded flag. Every public
// operation runs under one coarse lock, so exactly one mutation is in flight
// at a time.
type Ledger struct {
	mu      sync.Mutex
	state   *state.Manager
	gate    *faucet.Gate
	router  *router.Router
	periods PeriodSource
	seed    router.SeedConfig
	metrics *metrics.ExchangeMetrics

	events []types.Event
}

// NewLedger wires the root ledger over the supplied database.
func NewLedger(db storage.Database, params Params, periods PeriodSource) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("core: database required")
	}
	if periods == nil {
		return nil, fmt.Errorf("core: period source required")
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	gate, err := faucet.NewGate(
		faucet.Slot{Symbol: params.BaseSymbol, Amount: params.BaseFaucetAmount},
		faucet.Slot{Symbol: params.QuoteSymbol, Amount: params.QuoteFaucetAmount},
	)
	if err != nil {
		return nil, err
	}
	tradeRouter, err := router.NewRouter(params.BaseSymbol, params.QuoteSymbol, params.RewardSymbol, params.RewardUnit)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		state:   state.NewManager(db),
		gate:    gate,
		router:  tradeRouter,
		periods: periods,
		seed:    params.Seed,
		metrics: metrics.Exchange(),
	}, nil
}

func (l *Ledger) appendEvent(evt interface{ Event() *types.Event }) {
	e := evt.Event()
	if e == nil {
		return
	}
	l.events = append(l.events, *e)
	if len(l.events) > maxRetainedEvents {
		l.events = l.events[len(l.events)-maxRetainedEvents:]
	}
}

// Events returns a copy of the retained event log.
func (l *Ledger) Events() []types.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Event, len(l.events))
	copy(out, l.events)
	return out
}

// ExecuteTrade runs the full trade pipeline for the caller. The operation is
// all-or-nothing: when the venue rejects the order every local write is
// discarded and the venue's error is surfaced unchanged.
func (l *Ledger) ExecuteTrade(venue router.Venue, account crypto.Address, params router.OrderParams) (router.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := l.state.Begin()
	result, err := l.router.ExecuteTrade(txn, venue, account.Raw(), params)
	if err != nil {
		l.metrics.ObserveTrade("rejected")
		l.appendEvent(events.TradeRejected{Account: account.Raw(), Reason: err.Error()})
		return router.Result{}, err
	}
	if err := txn.Commit(); err != nil {
		l.metrics.ObserveTrade("failed")
		return router.Result{}, fmt.Errorf("core: commit trade: %w", err)
	}

	l.metrics.ObserveTrade("executed")
	l.appendEvent(events.TradeExecuted{
		Account:   account.Raw(),
		Sequence:  result.OrderSequence,
		BaseOut:   result.BaseOut,
		QuoteOut:  result.QuoteOut,
		RewardOut: result.RewardOut,
	})
	if result.RewardOut != nil && result.RewardOut.Sign() > 0 {
		l.metrics.ObserveRewardMinted()
		l.appendEvent(events.RewardMinted{Account: account.Raw(), Sequence: result.OrderSequence, Amount: result.RewardOut})
		if issued, err := rewards.RewardUnitsIssued(l.state); err == nil {
			l.metrics.SetRewardSupply(issued)
		}
	}
	return result, nil
}

// Transfers exposes the router's zero-suppressed view of a trade result.
func (l *Ledger) Transfers(result router.Result) []router.Transfer {
	return l.router.Transfers(result)
}

// RequestFaucetMint applies the per-period faucet rule for (asset, account)
// at the environment's current period.
func (l *Ledger) RequestFaucetMint(asset string, account crypto.Address) (faucet.Outcome, uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	period := l.periods.Current()
	txn := l.state.Begin()
	outcome, err := l.gate.TryMint(txn, asset, account.Raw(), period)
	if err != nil {
		l.metrics.ObserveFaucetMint(asset, "error")
		return faucet.Outcome{}, period, err
	}
	if !outcome.Minted {
		l.metrics.ObserveFaucetMint(asset, "already_minted")
		l.appendEvent(events.FaucetSkipped{Asset: asset, Account: account.Raw(), Period: period, Reason: "already_minted"})
		return outcome, period, nil
	}
	if err := txn.Commit(); err != nil {
		l.metrics.ObserveFaucetMint(asset, "error")
		return faucet.Outcome{}, period, fmt.Errorf("core: commit faucet mint: %w", err)
	}
	l.metrics.ObserveFaucetMint(asset, "minted")
	l.appendEvent(events.FaucetMinted{Asset: asset, Account: account.Raw(), Period: period, Amount: outcome.Amount})
	return outcome, period, nil
}

// UserState is the read-only per-account view.
type UserState struct {
	SwapCount uint64
	// LastFaucetPeriod has one entry per asset the account has ever minted.
	LastFaucetPeriod map[string]uint64
}

// QueryUserState reads the per-account view without mutating any state.
func (l *Ledger) QueryUserState(account crypto.Address) (UserState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count, err := rewards.SwapCount(l.state, account.Raw())
	if err != nil {
		return UserState{}, err
	}
	lastPeriods := make(map[string]uint64)
	for _, symbol := range l.gate.Symbols() {
		period, ok, err := l.gate.LastPeriod(l.state, symbol, account.Raw())
		if err != nil {
			return UserState{}, err
		}
		if ok {
			lastPeriods[symbol] = period
		}
	}
	return UserState{SwapCount: count, LastFaucetPeriod: lastPeriods}, nil
}

// SeedVenue performs the one-time venue bootstrap with the configured
// deposits and standing orders.
func (l *Ledger) SeedVenue(venue router.Venue) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := l.state.Begin()
	if err := l.router.SeedVenue(txn, venue, l.seed); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("core: commit venue seed: %w", err)
	}
	l.appendEvent(events.VenueSeeded{BaseDeposit: l.seed.BaseDeposit, QuoteDeposit: l.seed.QuoteDeposit, Orders: 2})
	return nil
}

// Assets returns the configured pair, base first.
func (l *Ledger) Assets() []string {
	return l.gate.Symbols()
}

// TokenSupply reads the total minted units for the supplied symbol.
func (l *Ledger) TokenSupply(symbol string) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.TokenSupply(symbol)
}

// RewardUnitsIssued reads the total reward units issued across all accounts.
func (l *Ledger) RewardUnitsIssued() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return rewards.RewardUnitsIssued(l.state)
}
