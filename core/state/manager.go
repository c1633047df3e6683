package state

import (
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"dexledger/storage"
)

// Manager mediates every read and write of persistent ledger state. Values are
// RLP encoded and keys are keccak-hashed into a flat namespace before hitting
// the backing database.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// KVPut stores the provided value under the supplied key using RLP encoding.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: manager not initialised")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// out. The boolean result reports whether the key was present.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state: manager not initialised")
	}
	data, err := m.db.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// Begin opens a buffered transaction over the manager. Writes accumulate in
// memory and reach the database only on Commit; dropping the transaction
// leaves the persistent state untouched.
func (m *Manager) Begin() *Txn {
	return &Txn{
		mgr:    m,
		writes: make(map[string][]byte),
	}
}

// Txn is a write buffer over the state manager. It provides the same KV
// surface as the manager, so engine code is oblivious to whether it runs
// against committed state or an in-flight operation.
type Txn struct {
	mgr    *Manager
	writes map[string][]byte
	order  []string
}

// KVPut records the write in the buffer without touching the database.
func (t *Txn) KVPut(key []byte, value interface{}) error {
	if t == nil || t.mgr == nil {
		return fmt.Errorf("state: transaction not initialised")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	hashed := string(kvKey(key))
	if _, seen := t.writes[hashed]; !seen {
		t.order = append(t.order, hashed)
	}
	t.writes[hashed] = encoded
	return nil
}

// KVGet reads through the buffer, falling back to committed state.
func (t *Txn) KVGet(key []byte, out interface{}) (bool, error) {
	if t == nil || t.mgr == nil {
		return false, fmt.Errorf("state: transaction not initialised")
	}
	if encoded, ok := t.writes[string(kvKey(key))]; ok {
		if out == nil {
			return true, nil
		}
		if err := rlp.DecodeBytes(encoded, out); err != nil {
			return false, err
		}
		return true, nil
	}
	return t.mgr.KVGet(key, out)
}

// Commit flushes the buffered writes to the database in insertion order.
func (t *Txn) Commit() error {
	if t == nil || t.mgr == nil || t.mgr.db == nil {
		return fmt.Errorf("state: transaction not initialised")
	}
	for _, hashed := range t.order {
		if err := t.mgr.db.Put([]byte(hashed), t.writes[hashed]); err != nil {
			return err
		}
	}
	t.writes = make(map[string][]byte)
	t.order = nil
	return nil
}

// Pending reports the number of buffered writes awaiting commit.
func (t *Txn) Pending() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// --- Token supply ---

var tokenSupplyPrefix = []byte("token/supply/")

func tokenSupplyKey(symbol string) []byte {
	buf := make([]byte, len(tokenSupplyPrefix)+len(symbol))
	copy(buf, tokenSupplyPrefix)
	copy(buf[len(tokenSupplyPrefix):], symbol)
	return buf
}

type kvStore interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

func tokenSupply(st kvStore, symbol string) (*big.Int, error) {
	supply := new(big.Int)
	if _, err := st.KVGet(tokenSupplyKey(symbol), supply); err != nil {
		return nil, err
	}
	return supply, nil
}

func mintToken(st kvStore, symbol string, amount *big.Int) (*big.Int, error) {
	if symbol == "" {
		return nil, fmt.Errorf("state: token symbol required")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("state: mint amount must be positive")
	}
	supply, err := tokenSupply(st, symbol)
	if err != nil {
		return nil, err
	}
	supply = new(big.Int).Add(supply, amount)
	if err := st.KVPut(tokenSupplyKey(symbol), supply); err != nil {
		return nil, err
	}
	return new(big.Int).Set(amount), nil
}

// TokenSupply returns the total units ever minted for the supplied symbol.
func (m *Manager) TokenSupply(symbol string) (*big.Int, error) {
	return tokenSupply(m, symbol)
}

// MintToken increases the recorded supply for the symbol and returns the
// freshly minted units. Supply only ever grows; there is no burn path.
func (m *Manager) MintToken(symbol string, amount *big.Int) (*big.Int, error) {
	return mintToken(m, symbol, amount)
}

// TokenSupply mirrors Manager.TokenSupply against the buffered view.
func (t *Txn) TokenSupply(symbol string) (*big.Int, error) {
	return tokenSupply(t, symbol)
}

// MintToken mirrors Manager.MintToken against the buffered view.
func (t *Txn) MintToken(symbol string, amount *big.Int) (*big.Int, error) {
	return mintToken(t, symbol, amount)
}
