package waddrmgr

import (
	"sync"
	"time"

	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
)

// state is an immutable snapshot of every Root and Account in the store.
// Every mutation builds a new state (cloning only the roots/accounts it
// touches — structural sharing, per spec.md §9's design note) and the
// Store atomically swaps its current pointer to it. A reader that grabbed
// the old pointer keeps seeing a perfectly consistent, if stale, view.
type state struct {
	roots    map[walletcore.RootID]*Root
	accounts map[walletcore.AccountID]*wtxmgr.Account
	synced   BlockStamp
}

func emptyState() *state {
	return &state{
		roots:    make(map[walletcore.RootID]*Root),
		accounts: make(map[walletcore.AccountID]*wtxmgr.Account),
	}
}

// clone returns a shallow top-level copy of s: new maps with the same
// pointer values. Callers then replace just the entries they're mutating
// before publishing.
func (s *state) clone() *state {
	ns := &state{
		roots:    make(map[walletcore.RootID]*Root, len(s.roots)),
		accounts: make(map[walletcore.AccountID]*wtxmgr.Account, len(s.accounts)),
		synced:   s.synced,
	}
	for k, v := range s.roots {
		ns.roots[k] = v
	}
	for k, v := range s.accounts {
		ns.accounts[k] = v
	}
	return ns
}

// Store is the HD Wallet Store: the transactional, in-memory mapping from
// RootID to Root record and from AccountID to Account state, per
// spec.md §4.2. All mutation operations are serialized behind mu; reads
// take a consistent snapshot (DbView). Snapshot waits for a mutation in
// progress to publish its new state; queries on a DbView already taken
// take no lock and never see later writes.
type Store struct {
	mu  sync.RWMutex
	cur *state
}

// New returns an empty Store.
func New() *Store {
	return &Store{cur: emptyState()}
}

// DefDB returns an empty database value, per spec.md §6's Persistence
// contract.
func DefDB() *Store {
	return New()
}

// OpenMemory opens a fresh in-memory Store instance, suitable for tests,
// per spec.md §6.
func OpenMemory() *Store {
	return New()
}

// CreateHDWallet creates a new Root and any accounts appearing as keys in
// utxoByAccount, per spec.md §4.2 operation 1. It fails with
// ErrRootAlreadyExists if record.ID is already present.
func (s *Store) CreateHDWallet(record RootRecord, utxoByAccount map[uint32]wtxmgr.Utxo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cur.roots[record.ID]; exists {
		return managerError(ErrRootAlreadyExists,
			"root "+record.ID.String()+" already exists", nil)
	}

	next := s.cur.clone()

	root := &Root{
		RootRecord: record,
		Accounts:   make(map[uint32]*AccountRecord),
	}
	for idx, utxo := range utxoByAccount {
		root.Accounts[idx] = &AccountRecord{Index: idx}
		acctID := walletcore.AccountID{Root: record.ID, Index: idx}
		acct := wtxmgr.NewAccount(acctID)
		acct.SeedUtxo(utxo)
		next.accounts[acctID] = acct
	}
	next.roots[record.ID] = root

	s.cur = next
	return nil
}

// ensureAccountRecord creates an AccountRecord for idx on root if one is
// missing, and leaves an existing one as it is. Caller must hold the lock
// and pass a root already copied for mutation.
func ensureAccountRecord(root *Root, idx uint32) {
	if root.Accounts == nil {
		root.Accounts = make(map[uint32]*AccountRecord)
	}
	if _, ok := root.Accounts[idx]; !ok {
		root.Accounts[idx] = &AccountRecord{Index: idx}
	}
}

// ApplyBlock atomically applies a batch of per-account PrefilteredBlocks to
// the store, per spec.md §4.2 operation 2: spent inputs are removed from
// utxo, new outputs are added, and any pending transaction resolved by
// this block — confirmed or double-spent — is dropped from pending.
// Accounts for unknown AccountIDs are created. The whole operation commits
// as a single atomic pointer swap; ApplyBlock never returns an error,
// matching spec.md §7 ("block-apply errors ... do not occur; a malformed
// block is a caller error").
func (s *Store) ApplyBlock(blocksByAccount map[walletcore.AccountID]*PrefilteredBlock, meta walletcore.BlockMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.clone()

	for acctID, pb := range blocksByAccount {
		acct, ok := next.accounts[acctID]
		if !ok {
			acct = wtxmgr.NewAccount(acctID)
		} else {
			acct = acct.Clone()
		}

		root, ok := next.roots[acctID.Root]
		if !ok {
			root = &Root{
				RootRecord: RootRecord{ID: acctID.Root},
				Accounts:   make(map[uint32]*AccountRecord),
			}
		} else {
			r := *root
			r.Accounts = make(map[uint32]*AccountRecord, len(root.Accounts))
			for k, v := range root.Accounts {
				r.Accounts[k] = v
			}
			root = &r
		}
		ensureAccountRecord(root, acctID.Index)
		next.roots[acctID.Root] = root

		for _, in := range pb.Spends {
			acct.Spend(in)
		}
		for _, out := range pb.Credits {
			if out.Amount <= 0 {
				log.Warnf("skipping non-positive credit %v to %v", out.Amount, acctID)
				continue
			}
			acct.CreditOutput(out.Input, out.TxOut, meta.Slot)
		}

		confirmedTx := make(map[walletcore.TxID]bool, len(pb.Txs))
		for _, h := range pb.Txs {
			confirmedTx[h] = true
		}
		spentThisBlock := make(map[walletcore.Input]bool, len(pb.Spends))
		for _, in := range pb.Spends {
			spentThisBlock[in] = true
		}
		for txid, p := range acct.PendingTxs {
			if confirmedTx[txid] {
				acct.RemovePending(txid)
				continue
			}
			for _, in := range p.Inputs {
				if spentThisBlock[in] {
					acct.RemovePending(txid)
					break
				}
			}
		}
		acct.PrunePendingAgainstUtxo()

		acct.Meta.LastSlot = meta.Slot
		acct.Meta.LastTime = meta.Time

		next.accounts[acctID] = acct
	}

	next.synced = BlockStamp{
		Height:    int32(meta.Slot),
		Hash:      meta.Hash,
		Timestamp: time.UnixMicro(meta.Time),
	}

	s.cur = next
}

// BlockStamp reports the most recent block applied to the store via
// ApplyBlock, per spec.md §6's Persistence contract for reporting wallet
// sync progress to an embedding node.
func (s *Store) BlockStamp() BlockStamp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.synced
}

// NewPending validates and registers a locally-submitted transaction
// against accountID's current utxo, per spec.md §4.2 operation 3.
// ownedOutputs is the subset of tx's outputs the caller (which already
// knows its own change addresses — see DESIGN.md) asserts belong back to
// accountID; the store itself never derives addresses.
func (s *Store) NewPending(accountID walletcore.AccountID, tx walletcore.Tx, ownedOutputs wtxmgr.Utxo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.cur.accounts[accountID]
	if !ok {
		return managerError(ErrUnknownAccount, "unknown account "+accountID.String(), nil)
	}

	pendingInputs := acct.PendingInputs()
	var unavailable []walletcore.Input
	for _, in := range tx.Inputs {
		if _, ok := acct.Utxo[in]; !ok {
			unavailable = append(unavailable, in)
			continue
		}
		if _, ok := pendingInputs[in]; ok {
			unavailable = append(unavailable, in)
		}
	}
	if len(unavailable) > 0 {
		return &Error{
			Code:        ErrInputsUnavailable,
			Description: "inputs unavailable for new pending transaction",
			Inputs:      unavailable,
		}
	}

	next := s.cur.clone()
	newAcct := acct.Clone()
	newAcct.AddPending(tx.Hash, tx, append([]walletcore.Input(nil), tx.Inputs...), ownedOutputs.Clone())
	next.accounts[accountID] = newAcct
	s.cur = next
	return nil
}

// CancelPending removes the listed transactions from each account's
// pending set, per spec.md §4.2 operation 4. Unknown account or tx ids are
// silently ignored — the operation is idempotent.
func (s *Store) CancelPending(byAccount map[walletcore.AccountID]map[walletcore.TxID]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.clone()
	for acctID, txids := range byAccount {
		acct, ok := next.accounts[acctID]
		if !ok {
			continue
		}
		acct = acct.Clone()
		for txid := range txids {
			acct.RemovePending(txid)
		}
		next.accounts[acctID] = acct
	}
	s.cur = next
}

// Snapshot returns a read-only, consistent view of the store suitable for
// queries, per spec.md §4.2 operation 5.
func (s *Store) Snapshot() *DbView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &DbView{s: s.cur}
}
