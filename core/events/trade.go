package events

import (
	"math/big"
	"strconv"

	"dexledger/core/types"
	"dexledger/crypto"
)

const (
	// TypeTradeExecuted is emitted after a trade fully commits.
	TypeTradeExecuted = "trade.executed"
	// TypeTradeRejected is emitted when the venue declines an order and the
	// local state has been rolled back.
	TypeTradeRejected = "trade.rejected"
	// TypeRewardMinted is emitted for every reward unit issued.
	TypeRewardMinted = "rewards.minted"
)

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

type TradeExecuted struct {
	Account   [20]byte
	Sequence  uint64
	BaseOut   *big.Int
	QuoteOut  *big.Int
	RewardOut *big.Int
}

func (TradeExecuted) EventType() string { return TypeTradeExecuted }

func (e TradeExecuted) Event() *types.Event {
	return &types.Event{
		Type: TypeTradeExecuted,
		Attributes: map[string]string{
			"account":   crypto.MustNewAddress(e.Account[:]).String(),
			"sequence":  strconv.FormatUint(e.Sequence, 10),
			"baseOut":   amountString(e.BaseOut),
			"quoteOut":  amountString(e.QuoteOut),
			"rewardOut": amountString(e.RewardOut),
		},
	}
}

type TradeRejected struct {
	Account [20]byte
	Reason  string
}

func (TradeRejected) EventType() string { return TypeTradeRejected }

func (e TradeRejected) Event() *types.Event {
	return &types.Event{
		Type: TypeTradeRejected,
		Attributes: map[string]string{
			"account": crypto.MustNewAddress(e.Account[:]).String(),
			"reason":  e.Reason,
		},
	}
}

type RewardMinted struct {
	Account  [20]byte
	Sequence uint64
	Amount   *big.Int
}

func (RewardMinted) EventType() string { return TypeRewardMinted }

func (e RewardMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardMinted,
		Attributes: map[string]string{
			"account":  crypto.MustNewAddress(e.Account[:]).String(),
			"sequence": strconv.FormatUint(e.Sequence, 10),
			"amount":   amountString(e.Amount),
		},
	}
}
