package waddrmgr

import (
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
)

// DbView is a read-only, point-in-time view of the store returned by
// Store.Snapshot. It never observes a subsequent write; the underlying
// state it holds is immutable by construction (see state.clone).
type DbView struct {
	s *state
}

// AccountUTxO returns the confirmed UTxO set of accountID, per
// spec.md §4.2's account_utxo query.
func (v *DbView) AccountUTxO(accountID walletcore.AccountID) (wtxmgr.Utxo, error) {
	acct, ok := v.s.accounts[accountID]
	if !ok {
		return nil, managerError(ErrUnknownAccount, "unknown account "+accountID.String(), nil)
	}
	return acct.Utxo.Clone(), nil
}

// AccountPending returns the set of outputs credited to accountID by its
// own pending transactions.
func (v *DbView) AccountPending(accountID walletcore.AccountID) (wtxmgr.Utxo, error) {
	acct, ok := v.s.accounts[accountID]
	if !ok {
		return nil, managerError(ErrUnknownAccount, "unknown account "+accountID.String(), nil)
	}
	return acct.Pending(), nil
}

// AccountTotalBalance returns the account's available balance: the sum of
// confirmed outputs. Pending outputs are excluded and pending spends are
// excluded too, per spec.md §4.2's "available balance" semantics.
func (v *DbView) AccountTotalBalance(accountID walletcore.AccountID) (walletcore.Amount, error) {
	acct, ok := v.s.accounts[accountID]
	if !ok {
		return 0, managerError(ErrUnknownAccount, "unknown account "+accountID.String(), nil)
	}
	return acct.TotalBalance(), nil
}

// requiredDepth translates a Root's AssuranceLevel into the extra
// confirmation depth SpendableUtxo/SpendableBalance enforce beyond the
// single confirming block apply_block already requires.
func requiredDepth(assurance AssuranceLevel) uint64 {
	if assurance == AssuranceStrict {
		return StrictAssuranceDepth
	}
	return 0
}

// AccountSpendableUTxO returns the subset of accountID's confirmed utxo
// that satisfies its Root's AssuranceLevel confirmation-depth requirement
// as of currentSlot — e.g. the HD Wallet Store's Store.BlockStamp().Height.
func (v *DbView) AccountSpendableUTxO(accountID walletcore.AccountID, currentSlot uint64) (wtxmgr.Utxo, error) {
	acct, ok := v.s.accounts[accountID]
	if !ok {
		return nil, managerError(ErrUnknownAccount, "unknown account "+accountID.String(), nil)
	}
	var assurance AssuranceLevel
	if root, ok := v.s.roots[accountID.Root]; ok {
		assurance = root.Assurance
	}
	return acct.SpendableUtxo(currentSlot, requiredDepth(assurance)), nil
}

// AccountSpendableBalance is AccountSpendableUTxO's total, per the Root's
// AssuranceLevel.
func (v *DbView) AccountSpendableBalance(accountID walletcore.AccountID, currentSlot uint64) (walletcore.Amount, error) {
	acct, ok := v.s.accounts[accountID]
	if !ok {
		return 0, managerError(ErrUnknownAccount, "unknown account "+accountID.String(), nil)
	}
	var assurance AssuranceLevel
	if root, ok := v.s.roots[accountID.Root]; ok {
		assurance = root.Assurance
	}
	return acct.SpendableBalance(currentSlot, requiredDepth(assurance)), nil
}

// Root returns the stored RootRecord for id.
func (v *DbView) Root(id walletcore.RootID) (RootRecord, error) {
	root, ok := v.s.roots[id]
	if !ok {
		return RootRecord{}, managerError(ErrUnknownRoot, "unknown root "+id.String(), nil)
	}
	return root.RootRecord, nil
}

// AccountIDs returns every AccountID belonging to root.
func (v *DbView) AccountIDs(root walletcore.RootID) ([]walletcore.AccountID, error) {
	r, ok := v.s.roots[root]
	if !ok {
		return nil, managerError(ErrUnknownRoot, "unknown root "+root.String(), nil)
	}
	ids := make([]walletcore.AccountID, 0, len(r.Accounts))
	for idx := range r.Accounts {
		ids = append(ids, walletcore.AccountID{Root: root, Index: idx})
	}
	return ids, nil
}

// Equal reports whether v and other hold byte-for-byte identical account
// utxo/pending state, ignoring per-account Meta (block timestamps/slots)
// — the comparison spec.md §8 property 3 (apply_block idempotence) is
// phrased against: "identical store (byte-for-byte snapshot equality
// modulo block metadata)".
func (v *DbView) Equal(other *DbView) bool {
	if len(v.s.accounts) != len(other.s.accounts) {
		return false
	}
	for id, a := range v.s.accounts {
		b, ok := other.s.accounts[id]
		if !ok {
			return false
		}
		if !utxoEqual(a.Utxo, b.Utxo) {
			return false
		}
		if len(a.PendingTxs) != len(b.PendingTxs) {
			return false
		}
		for txid, pa := range a.PendingTxs {
			pb, ok := b.PendingTxs[txid]
			if !ok || !utxoEqual(pa.Outputs, pb.Outputs) {
				return false
			}
		}
	}
	return true
}

func utxoEqual(a, b wtxmgr.Utxo) bool {
	if len(a) != len(b) {
		return false
	}
	for in, out := range a {
		bout, ok := b[in]
		if !ok || bout != out {
			return false
		}
	}
	return true
}
