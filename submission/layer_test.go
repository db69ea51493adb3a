package submission

import (
	"testing"
	"time"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

func txHash(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func fixedWaitPolicy(wait time.Duration, cap uint32) Policy {
	return Policy{
		Wait: func(uint32) time.Duration { return wait },
		Cap:  cap,
	}
}

// S-backoff: scenario S4 of spec.md §8 under DefaultPolicy — add at t=0,
// tick at t=1 (attempts becomes 1, resent, next due 1 + 1.25^1 = 2.25),
// tick at t=1.5 (not yet due, no-op), tick at t=2.25 (due again, attempts
// becomes 2).
func TestTickBackoffTiming(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tc := clock.NewTestClock(start)
	l := New(tc, DefaultPolicy)

	acctID := walletcore.AccountID{Index: 0}
	tx := walletcore.Tx{Hash: txHash(1)}
	l.AddPending(acctID, map[chainhash.Hash]walletcore.Tx{tx.Hash: tx})

	tc.SetTime(start.Add(time.Second))
	cancelled, toSend := l.Tick()
	require.Empty(t, cancelled)
	require.Len(t, toSend, 1)
	require.Equal(t, uint32(1), l.queue[queueKey{account: acctID, txID: tx.Hash}].Attempts)

	tc.SetTime(start.Add(1500 * time.Millisecond))
	cancelled, toSend = l.Tick()
	require.Empty(t, cancelled)
	require.Empty(t, toSend)

	tc.SetTime(start.Add(2250 * time.Millisecond))
	cancelled, toSend = l.Tick()
	require.Empty(t, cancelled)
	require.Len(t, toSend, 1)
	require.Equal(t, uint32(2), l.queue[queueKey{account: acctID, txID: tx.Hash}].Attempts)
}

// S-cap: scenario S5 of spec.md §8 — with cap=3, attempts 1 through 3 are
// all sent; the 4th tick pushes attempts to 4 > cap and the entry is
// cancelled instead.
func TestTickCancelsAfterCap(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tc := clock.NewTestClock(start)
	l := New(tc, fixedWaitPolicy(0, 3))

	acctID := walletcore.AccountID{Index: 0}
	tx := walletcore.Tx{Hash: txHash(1)}
	l.AddPending(acctID, map[chainhash.Hash]walletcore.Tx{tx.Hash: tx})

	for i := 0; i < 3; i++ {
		cancelled, toSend := l.Tick()
		require.Empty(t, cancelled)
		require.Len(t, toSend, 1)
	}

	cancelled, toSend := l.Tick()
	require.Empty(t, toSend)
	require.Len(t, cancelled[acctID], 1)
	require.True(t, cancelled[acctID][tx.Hash])
	require.Equal(t, 0, l.Len())
}

// remove() dequeues a transaction, so a later tick neither sends nor
// cancels it.
func TestRemoveDequeues(t *testing.T) {
	start := time.Now()
	tc := clock.NewTestClock(start)
	l := New(tc, fixedWaitPolicy(0, 255))

	acctID := walletcore.AccountID{Index: 0}
	tx := walletcore.Tx{Hash: txHash(7)}
	l.AddPending(acctID, map[chainhash.Hash]walletcore.Tx{tx.Hash: tx})
	require.Equal(t, 1, l.Len())

	l.Remove(tx.Hash)
	require.Equal(t, 0, l.Len())

	cancelled, toSend := l.Tick()
	require.Empty(t, cancelled)
	require.Empty(t, toSend)
}

// add_pending is enqueued with attempts=0 and next_due=now, so an
// immediate tick at the same instant dispatches it.
func TestAddPendingDueImmediately(t *testing.T) {
	start := time.Now()
	tc := clock.NewTestClock(start)
	l := New(tc, fixedWaitPolicy(time.Minute, 255))

	acctID := walletcore.AccountID{Index: 0}
	tx := walletcore.Tx{Hash: txHash(3)}
	l.AddPending(acctID, map[chainhash.Hash]walletcore.Tx{tx.Hash: tx})

	_, toSend := l.Tick()
	require.Len(t, toSend, 1)
	require.Equal(t, tx.Hash, toSend[0].Hash)
}
