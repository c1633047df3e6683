package core

import (
	"fmt"
	"time"
)

// TimePeriods derives the faucet period from wall-clock time: one period per
// configured interval since the Unix epoch. The sequence is monotonically
// non-decreasing as long as the host clock is.
type TimePeriods struct {
	interval uint64
	now      func() time.Time
}

// NewTimePeriods constructs a period source with the supplied interval in
// seconds.
func NewTimePeriods(intervalSeconds uint32) (*TimePeriods, error) {
	if intervalSeconds == 0 {
		return nil, fmt.Errorf("core: period interval must be positive")
	}
	return &TimePeriods{interval: uint64(intervalSeconds), now: time.Now}, nil
}

// SetClock overrides the time source, primarily for deterministic testing.
func (p *TimePeriods) SetClock(now func() time.Time) {
	if p == nil || now == nil {
		return
	}
	p.now = now
}

// Current returns the period counter for the present instant.
func (p *TimePeriods) Current() uint64 {
	ts := p.now().UTC().Unix()
	if ts < 0 {
		return 0
	}
	return uint64(ts) / p.interval
}
