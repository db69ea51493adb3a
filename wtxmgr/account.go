// Package wtxmgr owns the per-account UTxO and pending-transaction state
// that the HD Wallet Store (waddrmgr.Store) manages transactionally. It
// mirrors the teacher's wtxmgr package in spirit — confirmed credits live
// in one set, unconfirmed ones in another — but keyed on the generic
// walletcore types instead of the PQC-specific wire.MsgTxAbe/TxOutAbe
// shapes, since this module's contract treats signing/serialization as an
// opaque, externally supplied concern.
package wtxmgr

import (
	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/walletcore"
)

// Utxo is a mapping from Input to the TxOut it contains. Every key is
// unique by construction (it is a map). This package does not check
// amounts: CreditOutput, SeedUtxo and AddPending store whatever they are
// given. waddrmgr.Store.ApplyBlock skips non-positive credits;
// waddrmgr.Store.CreateHDWallet seeds its initial utxo unchecked.
type Utxo map[walletcore.Input]walletcore.TxOut

// Clone returns a shallow copy of u; since TxOut is a plain value type this
// is a full, independent copy.
func (u Utxo) Clone() Utxo {
	out := make(Utxo, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Total sums the amounts of every output in u.
func (u Utxo) Total() walletcore.Amount {
	var total walletcore.Amount
	for _, out := range u {
		total += out.Amount
	}
	return total
}

// PendingTx is a locally-submitted, not-yet-confirmed transaction as seen
// from one owning account: the inputs of tx it is spending from that
// account's utxo, and the outputs of tx that are credited back to it (e.g.
// change).
type PendingTx struct {
	TxID    chainhash.Hash
	Tx      walletcore.Tx
	Inputs  []walletcore.Input
	Outputs Utxo
}

// AccountMeta carries optional per-block bookkeeping for an account. It is
// presently only populated with the slot/time of the most recent block
// applied to this account, left available for history features per
// spec.md §9's note that the schema must leave room for it.
type AccountMeta struct {
	LastSlot uint64
	LastTime int64
}

// Account is the per-account confirmed UTxO and pending-transaction state
// that waddrmgr.Store serializes updates to.
type Account struct {
	ID         walletcore.AccountID
	Utxo       Utxo
	PendingTxs map[chainhash.Hash]*PendingTx
	Meta       AccountMeta
	locks      map[walletcore.Input]LockID
	creditSlot map[walletcore.Input]uint64
}

// NewAccount returns an empty Account for id.
func NewAccount(id walletcore.AccountID) *Account {
	return &Account{
		ID:         id,
		Utxo:       make(Utxo),
		PendingTxs: make(map[chainhash.Hash]*PendingTx),
		locks:      make(map[walletcore.Input]LockID),
		creditSlot: make(map[walletcore.Input]uint64),
	}
}

// Clone deep-copies a so mutations on the copy never alias the original —
// the basis for the HD Wallet Store's copy-on-write snapshots.
func (a *Account) Clone() *Account {
	clone := &Account{
		ID:         a.ID,
		Utxo:       a.Utxo.Clone(),
		Meta:       a.Meta,
		locks:      make(map[walletcore.Input]LockID, len(a.locks)),
		creditSlot: make(map[walletcore.Input]uint64, len(a.creditSlot)),
	}
	clone.PendingTxs = make(map[chainhash.Hash]*PendingTx, len(a.PendingTxs))
	for id, p := range a.PendingTxs {
		cp := *p
		cp.Outputs = p.Outputs.Clone()
		cp.Inputs = append([]walletcore.Input(nil), p.Inputs...)
		clone.PendingTxs[id] = &cp
	}
	for in, id := range a.locks {
		clone.locks[in] = id
	}
	for in, slot := range a.creditSlot {
		clone.creditSlot[in] = slot
	}
	return clone
}

// CreditOutput credits out at in, recording slot as its confirmation depth
// baseline for SpendableUtxo.
func (a *Account) CreditOutput(in walletcore.Input, out walletcore.TxOut, slot uint64) {
	a.Utxo[in] = out
	a.creditSlot[in] = slot
}

// SeedUtxo bulk-credits utxo with credit slot 0 — used when a wallet is
// created with a pre-existing initial utxo set. Under a required depth d,
// SpendableUtxo counts a seeded output as spendable once currentSlot >= d.
func (a *Account) SeedUtxo(utxo Utxo) {
	for in, out := range utxo {
		a.Utxo[in] = out
		a.creditSlot[in] = 0
	}
}

// Spend removes in from Utxo along with its credit-slot bookkeeping.
func (a *Account) Spend(in walletcore.Input) {
	delete(a.Utxo, in)
	delete(a.creditSlot, in)
}

// SpendableUtxo returns the subset of Utxo credited at least requiredDepth
// slots before currentSlot — the confirmation-depth gating a Root's
// AssuranceLevel calls for. An output with no recorded credit slot (never
// expected in practice, but defensive) is treated as immediately
// spendable rather than permanently excluded.
func (a *Account) SpendableUtxo(currentSlot, requiredDepth uint64) Utxo {
	if requiredDepth == 0 {
		return a.Utxo.Clone()
	}
	out := make(Utxo, len(a.Utxo))
	for in, txo := range a.Utxo {
		slot, ok := a.creditSlot[in]
		if !ok || currentSlot >= slot+requiredDepth {
			out[in] = txo
		}
	}
	return out
}

// SpendableBalance sums SpendableUtxo(currentSlot, requiredDepth).
func (a *Account) SpendableBalance(currentSlot, requiredDepth uint64) walletcore.Amount {
	return a.SpendableUtxo(currentSlot, requiredDepth).Total()
}

// Pending returns the set of outputs credited to this account by its
// pending transactions — the "pending" set of spec.md §3, projected to the
// Input->Output shape shared with Utxo.
func (a *Account) Pending() Utxo {
	out := make(Utxo)
	for _, p := range a.PendingTxs {
		for in, txo := range p.Outputs {
			out[in] = txo
		}
	}
	return out
}

// PendingInputs returns every input currently being spent by a pending
// transaction of this account, mapped to that transaction's id.
func (a *Account) PendingInputs() map[walletcore.Input]chainhash.Hash {
	out := make(map[walletcore.Input]chainhash.Hash)
	for txid, p := range a.PendingTxs {
		for _, in := range p.Inputs {
			out[in] = txid
		}
	}
	return out
}

// TotalBalance sums the confirmed utxo — "available balance" semantics per
// spec.md §4.2: pending outputs are excluded and pending spends are
// excluded too, i.e. this is simply Utxo.Total().
func (a *Account) TotalBalance() walletcore.Amount {
	return a.Utxo.Total()
}

// AddPending records tx as a pending transaction of this account. Callers
// must have already validated tx's inputs against Utxo/PendingInputs; this
// method only performs the bookkeeping insert.
func (a *Account) AddPending(txID chainhash.Hash, tx walletcore.Tx, inputs []walletcore.Input, outputs Utxo) {
	a.PendingTxs[txID] = &PendingTx{
		TxID:    txID,
		Tx:      tx,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// RemovePending removes txID from the pending set, if present. It is
// idempotent.
func (a *Account) RemovePending(txID chainhash.Hash) {
	delete(a.PendingTxs, txID)
}

// PrunePendingAgainstUtxo drops any pending transaction whose inputs are no
// longer all present in Utxo, per the HD Wallet Store's §4.2 invariant:
// "After apply_block, any pending tx violating this is dropped." Returns
// the ids of everything dropped.
func (a *Account) PrunePendingAgainstUtxo() []chainhash.Hash {
	var dropped []chainhash.Hash
	for txid, p := range a.PendingTxs {
		for _, in := range p.Inputs {
			if _, ok := a.Utxo[in]; !ok {
				dropped = append(dropped, txid)
				break
			}
		}
	}
	for _, txid := range dropped {
		delete(a.PendingTxs, txid)
	}
	return dropped
}
