package rewards

import (
	"errors"
	"fmt"
	"math"
)

// Storage abstracts the subset of state manager functionality required by the
// reward ledger.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	// ErrSwapCounterOverflow indicates an account reached the top of the
	// uint64 counter domain. The counter never wraps.
	ErrSwapCounterOverflow = errors.New("rewards: swap counter overflow")
	// ErrSupplyOverflow indicates the reward unit counter reached the top of
	// the uint64 domain.
	ErrSupplyOverflow = errors.New("rewards: reward supply overflow")
)

var (
	swapCountPrefix = []byte("rewards/count/")
	rewardSupplyKey = []byte("rewards/supply")
)

// mintInterval is the trade cadence at which a reward unit is issued: one unit
// on every trade whose post-increment counter is a multiple of this value.
const mintInterval = 2

// Decision is the outcome of recording a trade for an account.
type Decision struct {
	// OrderSequence is the post-increment swap counter. It doubles as the
	// idempotency tag handed to the downstream venue.
	OrderSequence uint64
	// ShouldMint reports whether this trade earns a reward unit.
	ShouldMint bool
}

func swapCountKey(addr [20]byte) []byte {
	buf := make([]byte, len(swapCountPrefix)+len(addr))
	copy(buf, swapCountPrefix)
	copy(buf[len(swapCountPrefix):], addr[:])
	return buf
}

// RecordTrade atomically increments the account's swap counter and reports
// whether the trade qualifies for a reward. A missing entry is treated as a
// zero counter.
func RecordTrade(st Storage, addr [20]byte) (Decision, error) {
	if st == nil {
		return Decision{}, fmt.Errorf("rewards: storage required")
	}
	key := swapCountKey(addr)
	var count uint64
	if _, err := st.KVGet(key, &count); err != nil {
		return Decision{}, err
	}
	if count == math.MaxUint64 {
		return Decision{}, ErrSwapCounterOverflow
	}
	count++
	if err := st.KVPut(key, count); err != nil {
		return Decision{}, err
	}
	return Decision{OrderSequence: count, ShouldMint: count%mintInterval == 0}, nil
}

// SwapCount reads the current swap counter for the account without mutating
// state.
func SwapCount(st Storage, addr [20]byte) (uint64, error) {
	if st == nil {
		return 0, fmt.Errorf("rewards: storage required")
	}
	var count uint64
	if _, err := st.KVGet(swapCountKey(addr), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// AccrueReward bumps the total count of reward units ever issued and returns
// the new total. The counter only ever grows.
func AccrueReward(st Storage) (uint64, error) {
	if st == nil {
		return 0, fmt.Errorf("rewards: storage required")
	}
	var issued uint64
	if _, err := st.KVGet(rewardSupplyKey, &issued); err != nil {
		return 0, err
	}
	if issued == math.MaxUint64 {
		return 0, ErrSupplyOverflow
	}
	issued++
	if err := st.KVPut(rewardSupplyKey, issued); err != nil {
		return 0, err
	}
	return issued, nil
}

// RewardUnitsIssued reads the total reward units issued so far.
func RewardUnitsIssued(st Storage) (uint64, error) {
	if st == nil {
		return 0, fmt.Errorf("rewards: storage required")
	}
	var issued uint64
	if _, err := st.KVGet(rewardSupplyKey, &issued); err != nil {
		return 0, err
	}
	return issued, nil
}
