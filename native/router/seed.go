package router

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrAlreadySeeded indicates the one-time bootstrap has already run against
// this ledger. Re-seeding is deliberately unsupported.
var ErrAlreadySeeded = errors.New("router: venue already seeded")

var venueSeededKey = []byte("router/venue/seeded")

// SeedConfig describes the initial liquidity and the two standing orders
// placed during bootstrap.
type SeedConfig struct {
	BaseDeposit  *big.Int
	QuoteDeposit *big.Int
	AskPrice     *big.Int
	AskQuantity  *big.Int
	BidPrice     *big.Int
	BidQuantity  *big.Int
	OrderExpiry  uint64
}

// Validate checks that every seeding amount is positive.
func (c SeedConfig) Validate() error {
	amounts := map[string]*big.Int{
		"base deposit":  c.BaseDeposit,
		"quote deposit": c.QuoteDeposit,
		"ask price":     c.AskPrice,
		"ask quantity":  c.AskQuantity,
		"bid price":     c.BidPrice,
		"bid quantity":  c.BidQuantity,
	}
	for label, amount := range amounts {
		if amount == nil || amount.Sign() <= 0 {
			return fmt.Errorf("router: seed %s must be positive", label)
		}
	}
	return nil
}

// SeedVenue performs the one-time bootstrap: mints the configured deposits,
// funds the venue, and places a standing sell and buy order tagged with a
// locally incrementing sequence. A seeded flag in
// state makes any later invocation fail with ErrAlreadySeeded.
func (r *Router) SeedVenue(st Storage, venue Venue, cfg SeedConfig) error {
	if r == nil {
		return fmt.Errorf("router: not configured")
	}
	if st == nil {
		return fmt.Errorf("router: storage required")
	}
	if venue == nil {
		return fmt.Errorf("router: venue required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var seeded bool
	if _, err := st.KVGet(venueSeededKey, &seeded); err != nil {
		return err
	}
	if seeded {
		return ErrAlreadySeeded
	}

	baseUnits, err := st.MintToken(r.baseSymbol, cfg.BaseDeposit)
	if err != nil {
		return err
	}
	if err := venue.DepositBase(baseUnits); err != nil {
		return err
	}
	quoteUnits, err := st.MintToken(r.quoteSymbol, cfg.QuoteDeposit)
	if err != nil {
		return err
	}
	if err := venue.DepositQuote(quoteUnits); err != nil {
		return err
	}

	sequence := uint64(0)
	if err := venue.PlaceLimitOrder(sequence, cfg.AskPrice, cfg.AskQuantity, SideSell, cfg.OrderExpiry); err != nil {
		return err
	}
	sequence++
	if err := venue.PlaceLimitOrder(sequence, cfg.BidPrice, cfg.BidQuantity, SideBuy, cfg.OrderExpiry); err != nil {
		return err
	}

	return st.KVPut(venueSeededKey, true)
}

// VenueSeeded reports whether the bootstrap has completed.
func VenueSeeded(st Storage) (bool, error) {
	if st == nil {
		return false, fmt.Errorf("router: storage required")
	}
	var seeded bool
	if _, err := st.KVGet(venueSeededKey, &seeded); err != nil {
		return false, err
	}
	return seeded, nil
}
