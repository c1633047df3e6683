package events

import (
	"math/big"
	"strconv"

	"dexledger/core/types"
	"dexledger/crypto"
)

const (
	// TypeFaucetMinted is emitted when a faucet request succeeds.
	TypeFaucetMinted = "faucet.minted"
	// TypeFaucetSkipped is emitted when a faucet request resolves to a
	// zero-value outcome.
	TypeFaucetSkipped = "faucet.skipped"
	// TypeVenueSeeded is emitted once, when the bootstrap completes.
	TypeVenueSeeded = "venue.seeded"
)

type FaucetMinted struct {
	Asset   string
	Account [20]byte
	Period  uint64
	Amount  *big.Int
}

func (FaucetMinted) EventType() string { return TypeFaucetMinted }

func (e FaucetMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeFaucetMinted,
		Attributes: map[string]string{
			"asset":   e.Asset,
			"account": crypto.MustNewAddress(e.Account[:]).String(),
			"period":  strconv.FormatUint(e.Period, 10),
			"amount":  amountString(e.Amount),
		},
	}
}

type FaucetSkipped struct {
	Asset   string
	Account [20]byte
	Period  uint64
	Reason  string
}

func (FaucetSkipped) EventType() string { return TypeFaucetSkipped }

func (e FaucetSkipped) Event() *types.Event {
	return &types.Event{
		Type: TypeFaucetSkipped,
		Attributes: map[string]string{
			"asset":   e.Asset,
			"account": crypto.MustNewAddress(e.Account[:]).String(),
			"period":  strconv.FormatUint(e.Period, 10),
			"reason":  e.Reason,
		},
	}
}

type VenueSeeded struct {
	BaseDeposit  *big.Int
	QuoteDeposit *big.Int
	Orders       uint64
}

func (VenueSeeded) EventType() string { return TypeVenueSeeded }

func (e VenueSeeded) Event() *types.Event {
	return &types.Event{
		Type: TypeVenueSeeded,
		Attributes: map[string]string{
			"baseDeposit":  amountString(e.BaseDeposit),
			"quoteDeposit": amountString(e.QuoteDeposit),
			"orders":       strconv.FormatUint(e.Orders, 10),
		},
	}
}
