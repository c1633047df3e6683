package faucet

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
)

type mockStorage struct {
	kv     map[string][]byte
	supply map[string]*big.Int
}

func newMockStorage() *mockStorage {
	return &mockStorage{kv: make(map[string][]byte), supply: make(map[string]*big.Int)}
}

func (m *mockStorage) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.kv[string(key)] = encoded
	return nil
}

func (m *mockStorage) KVGet(key []byte, out interface{}) (bool, error) {
	encoded, ok := m.kv[string(key)]
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mockStorage) MintToken(symbol string, amount *big.Int) (*big.Int, error) {
	current, ok := m.supply[symbol]
	if !ok {
		current = big.NewInt(0)
	}
	m.supply[symbol] = new(big.Int).Add(current, amount)
	return new(big.Int).Set(amount), nil
}

func addr(b byte) [20]byte {
	var a [20]byte
	a[0] = b
	return a
}

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	gate, err := NewGate(
		Slot{Symbol: "DEX", Amount: big.NewInt(1000)},
		Slot{Symbol: "ZUSD", Amount: big.NewInt(100)},
	)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return gate
}

func TestTryMintPerPeriod(t *testing.T) {
	gate := newTestGate(t)
	store := newMockStorage()
	account := addr(1)

	out, err := gate.TryMint(store, "DEX", account, 5)
	if err != nil {
		t.Fatalf("first mint: %v", err)
	}
	if !out.Minted || out.Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("unexpected first outcome: %+v", out)
	}
	last, ok, err := gate.LastPeriod(store, "DEX", account)
	if err != nil || !ok {
		t.Fatalf("last period: %v ok=%v", err, ok)
	}
	if last != 5 {
		t.Fatalf("unexpected last period %d", last)
	}

	// Same period: zero-value outcome, record untouched.
	out, err = gate.TryMint(store, "DEX", account, 5)
	if err != nil {
		t.Fatalf("repeat mint: %v", err)
	}
	if out.Minted || out.Amount.Sign() != 0 {
		t.Fatalf("expected already-minted outcome, got %+v", out)
	}
	if got := store.supply["DEX"]; got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("supply mutated on rejected mint: %s", got)
	}

	// Next period succeeds again.
	out, err = gate.TryMint(store, "DEX", account, 6)
	if err != nil {
		t.Fatalf("period 6 mint: %v", err)
	}
	if !out.Minted || out.Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("unexpected period 6 outcome: %+v", out)
	}
	if last, _, _ = gate.LastPeriod(store, "DEX", account); last != 6 {
		t.Fatalf("record not advanced, last=%d", last)
	}
}

func TestTryMintStalePeriodRejected(t *testing.T) {
	gate := newTestGate(t)
	store := newMockStorage()
	account := addr(2)

	if _, err := gate.TryMint(store, "ZUSD", account, 9); err != nil {
		t.Fatalf("mint: %v", err)
	}
	out, err := gate.TryMint(store, "ZUSD", account, 8)
	if err != nil {
		t.Fatalf("stale mint: %v", err)
	}
	if out.Minted {
		t.Fatal("mint must not succeed for an earlier period")
	}
}

func TestTryMintTracksAssetsIndependently(t *testing.T) {
	gate := newTestGate(t)
	store := newMockStorage()
	account := addr(3)

	if _, err := gate.TryMint(store, "DEX", account, 4); err != nil {
		t.Fatalf("base mint: %v", err)
	}
	out, err := gate.TryMint(store, "ZUSD", account, 4)
	if err != nil {
		t.Fatalf("quote mint: %v", err)
	}
	if !out.Minted || out.Amount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("quote slot amount wrong: %+v", out)
	}
}

func TestTryMintUnknownAsset(t *testing.T) {
	gate := newTestGate(t)
	store := newMockStorage()
	_, err := gate.TryMint(store, "BTC", addr(4), 1)
	if !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("expected ErrUnknownAsset, got %v", err)
	}
}

func TestNewGateValidation(t *testing.T) {
	if _, err := NewGate(Slot{Symbol: "DEX", Amount: big.NewInt(1)}, Slot{Symbol: "dex", Amount: big.NewInt(1)}); err == nil {
		t.Fatal("expected duplicate symbol rejection")
	}
	if _, err := NewGate(Slot{Symbol: "DEX"}, Slot{Symbol: "ZUSD", Amount: big.NewInt(1)}); err == nil {
		t.Fatal("expected missing amount rejection")
	}
	if _, err := NewGate(Slot{Symbol: " ", Amount: big.NewInt(1)}, Slot{Symbol: "ZUSD", Amount: big.NewInt(1)}); err == nil {
		t.Fatal("expected missing symbol rejection")
	}
}
