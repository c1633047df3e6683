package faucet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Storage abstracts the state access the faucet needs: cooldown records plus
// the minting authority for the configured assets.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	MintToken(symbol string, amount *big.Int) (*big.Int, error)
}

// ErrUnknownAsset is returned when a symbol outside the configured pair is
// presented. The asset set is fixed at construction, so this is an
// integration bug rather than a runtime condition.
var ErrUnknownAsset = errors.New("faucet: unknown asset")

var faucetRecordPrefix = []byte("faucet/last/")

// Slot binds one configured asset to its fixed per-period mint amount. The
// gate holds exactly two slots and with them the sole minting path for the
// faucet, so at most one mint per (asset, account, period) can ever succeed.
type Slot struct {
	Symbol string
	Amount *big.Int
}

func (s Slot) validate() error {
	if strings.TrimSpace(s.Symbol) == "" {
		return fmt.Errorf("faucet: slot symbol required")
	}
	if s.Amount == nil || s.Amount.Sign() <= 0 {
		return fmt.Errorf("faucet: slot %s amount must be positive", s.Symbol)
	}
	return nil
}

// Gate enforces the at-most-one-free-mint-per-period rule for the base and
// quote assets.
type Gate struct {
	base  Slot
	quote Slot
}

// NewGate constructs a gate over the two configured asset slots.
func NewGate(base, quote Slot) (*Gate, error) {
	if err := base.validate(); err != nil {
		return nil, err
	}
	if err := quote.validate(); err != nil {
		return nil, err
	}
	if strings.EqualFold(base.Symbol, quote.Symbol) {
		return nil, fmt.Errorf("faucet: base and quote assets must differ")
	}
	return &Gate{base: base, quote: quote}, nil
}

// Outcome reports the result of a faucet request. A zero-value amount with
// Minted false is the "already minted this period" case, which is not an
// error.
type Outcome struct {
	Minted bool
	Amount *big.Int
}

func (g *Gate) slot(symbol string) (Slot, error) {
	trimmed := strings.TrimSpace(symbol)
	switch {
	case strings.EqualFold(trimmed, g.base.Symbol):
		return g.base, nil
	case strings.EqualFold(trimmed, g.quote.Symbol):
		return g.quote, nil
	}
	return Slot{}, fmt.Errorf("%w: %q", ErrUnknownAsset, symbol)
}

// Symbols returns the configured asset symbols, base first.
func (g *Gate) Symbols() []string {
	if g == nil {
		return nil
	}
	return []string{g.base.Symbol, g.quote.Symbol}
}

func recordKey(symbol string, addr [20]byte) []byte {
	buf := make([]byte, 0, len(faucetRecordPrefix)+len(symbol)+1+len(addr))
	buf = append(buf, faucetRecordPrefix...)
	buf = append(buf, symbol...)
	buf = append(buf, '/')
	buf = append(buf, addr[:]...)
	return buf
}

// TryMint applies the per-period eligibility rule for (asset, account). When
// eligible it upserts the cooldown record to the current period and mints the
// slot's fixed amount; otherwise it returns a zero-value outcome with no state
// mutation.
func (g *Gate) TryMint(st Storage, symbol string, addr [20]byte, period uint64) (Outcome, error) {
	if g == nil {
		return Outcome{}, fmt.Errorf("faucet: gate not configured")
	}
	if st == nil {
		return Outcome{}, fmt.Errorf("faucet: storage required")
	}
	slot, err := g.slot(symbol)
	if err != nil {
		return Outcome{}, err
	}
	key := recordKey(slot.Symbol, addr)
	var lastPeriod uint64
	ok, err := st.KVGet(key, &lastPeriod)
	if err != nil {
		return Outcome{}, err
	}
	if ok && lastPeriod >= period {
		return Outcome{Minted: false, Amount: big.NewInt(0)}, nil
	}
	if err := st.KVPut(key, period); err != nil {
		return Outcome{}, err
	}
	minted, err := st.MintToken(slot.Symbol, slot.Amount)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Minted: true, Amount: minted}, nil
}

// LastPeriod reads the cooldown record for (asset, account). The boolean
// reports whether the account has ever minted the asset.
func (g *Gate) LastPeriod(st Storage, symbol string, addr [20]byte) (uint64, bool, error) {
	if g == nil {
		return 0, false, fmt.Errorf("faucet: gate not configured")
	}
	if st == nil {
		return 0, false, fmt.Errorf("faucet: storage required")
	}
	slot, err := g.slot(symbol)
	if err != nil {
		return 0, false, err
	}
	var lastPeriod uint64
	ok, err := st.KVGet(recordKey(slot.Symbol, addr), &lastPeriod)
	if err != nil {
		return 0, false, err
	}
	return lastPeriod, ok, nil
}
