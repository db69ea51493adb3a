package wtxmgr

import (
	"crypto/rand"
	"time"

	"github.com/abesuite/utxowallet/walletcore"
)

// DefaultLockDuration matches the teacher's wtxmgr.DefaultLockDuration.
// Nothing in this package consults it: a lock taken by LockOutput does not
// expire and is held until UnlockOutput releases it.
const DefaultLockDuration = 10 * time.Minute

// LockID identifies the holder of an output lock, e.g. a coin-selection
// call that wants to hold the outputs it chose until the caller either
// confirms them as spent via new_pending or releases them back to the
// pool.
type LockID [32]byte

// NewLockID returns a fresh, randomly generated LockID suitable for a new
// coin-selection attempt.
func NewLockID() (LockID, error) {
	var id LockID
	if _, err := rand.Read(id[:]); err != nil {
		return LockID{}, err
	}
	return id, nil
}

// LockOutput marks in as reserved by id. It returns an *Error with code
// ErrNoExist if in is not part of a.Utxo, or with code ErrDuplicate if a
// different id already holds the lock.
func (a *Account) LockOutput(id LockID, in walletcore.Input) error {
	if _, ok := a.Utxo[in]; !ok {
		return newError(ErrNoExist, "cannot lock unknown output", nil)
	}
	if existing, ok := a.locks[in]; ok && existing != id {
		return newError(ErrDuplicate, "output already locked", nil)
	}
	a.locks[in] = id
	return nil
}

// UnlockOutput releases the lock on in if it is held by id. Unlocking an
// output not locked by id, including one that is not locked at all, is a
// no-op.
func (a *Account) UnlockOutput(id LockID, in walletcore.Input) {
	if existing, ok := a.locks[in]; ok && existing == id {
		delete(a.locks, in)
	}
}

// IsLocked reports whether in is currently locked by any id.
func (a *Account) IsLocked(in walletcore.Input) bool {
	_, ok := a.locks[in]
	return ok
}
