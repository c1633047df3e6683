package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"dexledger/storage"
)

func TestManagerKVRoundTrip(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	type record struct {
		Label string
		Count uint64
	}
	require.NoError(t, mgr.KVPut([]byte("test/record"), record{Label: "a", Count: 7}))

	var out record
	ok, err := mgr.KVGet([]byte("test/record"), &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record{Label: "a", Count: 7}, out)

	ok, err = mgr.KVGet([]byte("test/missing"), &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTxnBuffersUntilCommit(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	txn := mgr.Begin()

	var count uint64 = 41
	require.NoError(t, txn.KVPut([]byte("counter"), count+1))

	// The write is visible through the transaction but not in committed state.
	var fromTxn uint64
	ok, err := txn.KVGet([]byte("counter"), &fromTxn)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), fromTxn)

	var fromMgr uint64
	ok, err = mgr.KVGet([]byte("counter"), &fromMgr)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, txn.Commit())
	ok, err = mgr.KVGet([]byte("counter"), &fromMgr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), fromMgr)
}

func TestTxnDiscardLeavesStateUntouched(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	require.NoError(t, mgr.KVPut([]byte("counter"), uint64(5)))

	txn := mgr.Begin()
	require.NoError(t, txn.KVPut([]byte("counter"), uint64(6)))
	require.Equal(t, 1, txn.Pending())
	// Dropping the transaction without Commit is the rollback path.

	var count uint64
	ok, err := mgr.KVGet([]byte("counter"), &count)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(5), count)
}

func TestMintTokenGrowsSupply(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())

	supply, err := mgr.TokenSupply("DRP")
	require.NoError(t, err)
	require.Zero(t, supply.Sign())

	minted, err := mgr.MintToken("DRP", big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10), minted)

	txn := mgr.Begin()
	_, err = txn.MintToken("DRP", big.NewInt(5))
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	supply, err = mgr.TokenSupply("DRP")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(15), supply)
}

func TestMintTokenRejectsNonPositiveAmounts(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	if _, err := mgr.MintToken("DRP", big.NewInt(0)); err == nil {
		t.Fatal("expected zero amount rejection")
	}
	if _, err := mgr.MintToken("DRP", nil); err == nil {
		t.Fatal("expected nil amount rejection")
	}
	if _, err := mgr.MintToken("", big.NewInt(1)); err == nil {
		t.Fatal("expected missing symbol rejection")
	}
}
