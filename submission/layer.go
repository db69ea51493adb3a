// Package submission implements the state machine over locally-issued
// pending transactions described in spec.md §4.4: schedule, tick,
// resubmit, cancel. It is grounded on two teacher patterns: lnd's
// lnwallet.Rebroadcaster interface (the same "keep resending until
// confirmed" contract, see _examples/lightningnetwork-lnd/lnwallet/
// rebroadcaster.go) and abewallet's own direct dependency on
// github.com/lightningnetwork/lnd/clock for an injectable time source
// (already imported by the teacher's wtxmgr package for exactly this
// kind of testability).
package submission

import (
	"sync"
	"time"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/walletlog"
	"github.com/lightningnetwork/lnd/clock"
)

var log = walletlog.SubLogger("SUBM")

// UseLogger sets the package-level logger used by submission.
func UseLogger(subsystem string) {
	log = walletlog.SubLogger(subsystem)
}

// Record is a single entry in the submission queue: the Pending-Tx
// Submission Record of spec.md §3.
type Record struct {
	Account     walletcore.AccountID
	TxID        chainhash.Hash
	Tx          walletcore.Tx
	Attempts    uint32
	NextDueSlot time.Time
}

type queueKey struct {
	account walletcore.AccountID
	txID    chainhash.Hash
}

// Layer is a per-Active-Kernel state machine tracking locally issued
// pending transactions, per spec.md §4.4.
type Layer struct {
	mu     sync.Mutex
	clock  clock.Clock
	policy Policy
	queue  map[queueKey]*Record
	byTx   map[chainhash.Hash]queueKey
}

// New returns a submission Layer using clk as its time source and policy
// to schedule resubmission/cancellation. Passing a clock.TestClock makes
// the layer fully deterministic for tests, per spec.md §6's Clock
// interface contract.
func New(clk clock.Clock, policy Policy) *Layer {
	return &Layer{
		clock:  clk,
		policy: policy,
		queue:  make(map[queueKey]*Record),
		byTx:   make(map[chainhash.Hash]queueKey),
	}
}

// AddPending enqueues every (txID, tx) pair for accountID with attempts=0
// and next_due=now, per spec.md §4.4's add_pending.
func (l *Layer) AddPending(accountID walletcore.AccountID, txs map[chainhash.Hash]walletcore.Tx) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	for txID, tx := range txs {
		k := queueKey{account: accountID, txID: txID}
		l.queue[k] = &Record{
			Account:     accountID,
			TxID:        txID,
			Tx:          tx,
			NextDueSlot: now,
		}
		l.byTx[txID] = k
	}
}

// Remove dequeues txID, used when the kernel observes its confirmation.
// Removing an id not present is a no-op.
func (l *Layer) Remove(txID chainhash.Hash) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(txID)
}

func (l *Layer) removeLocked(txID chainhash.Hash) {
	k, ok := l.byTx[txID]
	if !ok {
		return
	}
	delete(l.queue, k)
	delete(l.byTx, txID)
}

// Tick advances the clock's view and returns the transactions whose
// attempts exceeded the policy cap (moved out of the queue as cancelled)
// and the transactions whose next_due was reached (attempts incremented,
// next_due rescheduled, and returned for resubmission), per spec.md §4.4's
// tick. It never returns an error: the result is always a (possibly empty)
// pair of cancelled/to-send sets.
func (l *Layer) Tick() (cancelled map[walletcore.AccountID]map[chainhash.Hash]bool, toSend []walletcore.Tx) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	cancelled = make(map[walletcore.AccountID]map[chainhash.Hash]bool)

	for k, rec := range l.queue {
		if rec.NextDueSlot.After(now) {
			continue
		}

		rec.Attempts++
		if rec.Attempts > l.policy.Cap {
			if cancelled[k.account] == nil {
				cancelled[k.account] = make(map[chainhash.Hash]bool)
			}
			cancelled[k.account][k.txID] = true
			l.removeLocked(k.txID)
			log.Debugf("cancelling pending tx %v for account %v after %d attempts",
				k.txID, k.account, rec.Attempts-1)
			continue
		}

		rec.NextDueSlot = now.Add(l.policy.Wait(rec.Attempts))
		toSend = append(toSend, rec.Tx)
	}

	return cancelled, toSend
}

// Len returns the number of transactions currently tracked.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
