package waddrmgr

import (
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/walletlog"
)

var log = walletlog.SubLogger("WADR")

// UseLogger sets the package-level logger used by waddrmgr.
func UseLogger(subsystem string) {
	log = walletlog.SubLogger(subsystem)
}

// PrefilteredBlock is the projection of a ResolvedBlock onto one account:
// the inputs spent from it and the new outputs credited to it, per
// spec.md §4.1.
type PrefilteredBlock struct {
	Account walletcore.AccountID
	Spends  []walletcore.Input
	Credits []walletcore.Output
	Meta    walletcore.BlockMeta

	// Txs lists, deduplicated, the hashes of every transaction in the
	// source block that touched this account (as a spend or a credit).
	// Store.ApplyBlock uses it to recognize a pending transaction as
	// confirmed even when none of its own change outputs round-trip
	// back into this account's prefiltered credits.
	Txs []walletcore.TxID
}

// Prefilter projects block onto the accounts owned by a single ESK,
// grouping the result by AccountID. This is the naive, documented-TODO
// per-ESK pass of spec.md §4.1's "Optimization note": correct, O(n) in the
// size of the block for a single ESK, called once per wallet by
// PassiveKernel when a single-wallet walk is all that's needed (e.g.
// CreateWalletHDRandom prefiltering the caller-supplied initial UTxO).
func Prefilter(root walletcore.RootID, esk ESK, block walletcore.ResolvedBlock) map[walletcore.AccountID]*PrefilteredBlock {
	return prefilterWith(block, func(addr walletcore.Address) (walletcore.AccountID, bool) {
		idx, ok, err := esk.DeriveAccount(addr)
		if err != nil {
			log.Debugf("skipping output: %v", &DerivationError{Address: addr, Err: err})
			return walletcore.AccountID{}, false
		}
		if !ok {
			return walletcore.AccountID{}, false
		}
		return walletcore.AccountID{Root: root, Index: idx}, true
	})
}

// PrefilterAll folds once over block's transactions against every ESK in
// esks, merging results by disjoint union over AccountID. This is the
// single-pass variant spec.md §4.1 prefers: the block's transactions are
// walked once, and each address is tried against the ESKs in turn until
// one owns it, so the worst case is still O(n*k) derivations for k
// wallets. AccountIDs across roots are disjoint by construction (RootID is
// part of AccountID).
func PrefilterAll(esks map[walletcore.WalletID]ESK, block walletcore.ResolvedBlock) map[walletcore.AccountID]*PrefilteredBlock {
	return prefilterWith(block, func(addr walletcore.Address) (walletcore.AccountID, bool) {
		for walletID, esk := range esks {
			idx, ok, err := esk.DeriveAccount(addr)
			if err != nil {
				log.Debugf("skipping output: %v", &DerivationError{Address: addr, Err: err})
				continue
			}
			if ok {
				return walletcore.AccountID{Root: walletID, Index: idx}, true
			}
		}
		return walletcore.AccountID{}, false
	})
}

// prefilterWith is the shared fold: for every input in the block, test
// ownership of the spent output via owner(); for every new output, attempt
// to derive its owning account the same way. Accounts are created on first
// mention — callers merge the result into the store, which implicitly
// creates the account per spec.md §4.1.
func prefilterWith(block walletcore.ResolvedBlock, owner func(walletcore.Address) (walletcore.AccountID, bool)) map[walletcore.AccountID]*PrefilteredBlock {
	results := make(map[walletcore.AccountID]*PrefilteredBlock)

	seenTx := make(map[walletcore.AccountID]map[walletcore.TxID]bool)

	get := func(acct walletcore.AccountID) *PrefilteredBlock {
		pb, ok := results[acct]
		if !ok {
			pb = &PrefilteredBlock{Account: acct, Meta: block.BlockMeta}
			results[acct] = pb
			seenTx[acct] = make(map[walletcore.TxID]bool)
		}
		return pb
	}
	touch := func(acct walletcore.AccountID, txHash walletcore.TxID) {
		if !seenTx[acct][txHash] {
			seenTx[acct][txHash] = true
			results[acct].Txs = append(results[acct].Txs, txHash)
		}
	}

	for _, tx := range block.Txs {
		for i, in := range tx.Inputs {
			if i >= len(tx.Spent) {
				continue
			}
			spentOut := tx.Spent[i]
			if acct, ok := owner(spentOut.Address); ok {
				get(acct).Spends = append(get(acct).Spends, in)
				touch(acct, tx.Hash)
			}
		}
		for idx, txo := range tx.Outputs {
			acct, ok := owner(txo.Address)
			if !ok {
				continue
			}
			in := walletcore.Input{TxHash: tx.Hash, Index: uint8(idx)}
			get(acct).Credits = append(get(acct).Credits, walletcore.Output{Input: in, TxOut: txo})
			touch(acct, tx.Hash)
		}
	}

	return results
}
