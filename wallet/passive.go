// Package wallet composes the HD Wallet Store (waddrmgr), the Submission
// Layer (submission), and a Diffusion sink into the Passive and Active
// Kernels of spec.md §4.3/§4.5. It plays the role the teacher's wallet
// package plays — the orchestration layer sitting above waddrmgr/wtxmgr —
// generalized from chain-notification-driven rescans to the synchronous
// ApplyBlock/ApplyBlocks contract this spec calls for.
package wallet

import (
	"time"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/waddrmgr"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/walletlog"
	"github.com/abesuite/utxowallet/wtxmgr"
)

var log = walletlog.SubLogger("WLLT")

// UseLogger sets the package-level logger used by wallet.
func UseLogger(subsystem string) {
	log = walletlog.SubLogger(subsystem)
}

// PassiveKernel owns the ESK map, the HD Wallet Store handle, and the
// logger, per spec.md §4.3. It drives block ingest: prefilter across every
// known wallet, then commit the batched mutation to the store.
type PassiveKernel struct {
	store *waddrmgr.Store
	esks  *eskMap
}

// NewPassiveKernel wires a PassiveKernel to store. store is the sole
// authority over account state; the returned kernel's ESK map starts
// empty.
func NewPassiveKernel(store *waddrmgr.Store) *PassiveKernel {
	return &PassiveKernel{store: store, esks: newESKMap()}
}

// Store returns the underlying HD Wallet Store handle, for components (the
// Active Kernel, a persistence adapter) that need direct access to it.
func (k *PassiveKernel) Store() *waddrmgr.Store {
	return k.store
}

// CreateWalletHDRandom derives a RootID from pubKeyHash, prefilters
// initialUtxo under esk, creates the root (and any accounts discovered),
// and — only on success — inserts esk into the ESK map keyed by walletID.
// It returns the AccountIDs discovered in initialUtxo, per spec.md §4.3.
func (k *PassiveKernel) CreateWalletHDRandom(
	name string,
	hasPassword bool,
	assurance waddrmgr.AssuranceLevel,
	walletID walletcore.WalletID,
	pubKeyHash chainhash.Hash,
	esk waddrmgr.ESK,
	initialUtxo walletcore.ResolvedBlock,
) ([]walletcore.AccountID, error) {
	rootID := pubKeyHash

	prefiltered := waddrmgr.Prefilter(rootID, esk, initialUtxo)
	utxoByAccount := make(map[uint32]wtxmgr.Utxo)
	for acctID, pb := range prefiltered {
		u := utxoByAccount[acctID.Index]
		if u == nil {
			u = make(wtxmgr.Utxo)
		}
		for _, credit := range pb.Credits {
			u[credit.Input] = credit.TxOut
		}
		utxoByAccount[acctID.Index] = u
	}

	record := waddrmgr.RootRecord{
		ID:          rootID,
		Name:        name,
		Assurance:   assurance,
		HasPassword: hasPassword,
		CreatedAt:   time.Now(),
	}
	if err := k.store.CreateHDWallet(record, utxoByAccount); err != nil {
		return nil, err
	}

	k.esks.insert(walletID, esk)

	accountIDs := make([]walletcore.AccountID, 0, len(utxoByAccount))
	for idx := range utxoByAccount {
		accountIDs = append(accountIDs, walletcore.AccountID{Root: rootID, Index: idx})
	}
	return accountIDs, nil
}

// ApplyBlock prefilters block across every known ESK using the single-pass
// fold (spec.md §4.1's preferred variant) and commits the result to the
// store in one atomic operation.
func (k *PassiveKernel) ApplyBlock(block walletcore.ResolvedBlock) {
	prefiltered := waddrmgr.PrefilterAll(k.esks.all(), block)
	k.store.ApplyBlock(prefiltered, block.BlockMeta)
	log.Debugf("applied block at slot %d touching %d accounts", block.Slot, len(prefiltered))
}

// ApplyBlocks sequentially applies blocks, one atomic commit per block, per
// spec.md §4.3: a crash partway through leaves the store consistent at the
// last committed block, since each ApplyBlock call is itself atomic.
func (k *PassiveKernel) ApplyBlocks(blocks []walletcore.ResolvedBlock) {
	for _, block := range blocks {
		k.ApplyBlock(block)
	}
}

// AccountUTxO is a thin wrapper around a fresh snapshot's query, per
// spec.md §4.3.
func (k *PassiveKernel) AccountUTxO(accountID walletcore.AccountID) (wtxmgr.Utxo, error) {
	return k.store.Snapshot().AccountUTxO(accountID)
}

// AccountTotalBalance is a thin wrapper around a fresh snapshot's query,
// per spec.md §4.3.
func (k *PassiveKernel) AccountTotalBalance(accountID walletcore.AccountID) (walletcore.Amount, error) {
	return k.store.Snapshot().AccountTotalBalance(accountID)
}

// AccountSpendableUTxO is AccountUTxO filtered by accountID's Root's
// AssuranceLevel: an AssuranceStrict root withholds a credit from this set
// until it has StrictAssuranceDepth confirmations behind the store's most
// recently applied block, per spec.md §S.
func (k *PassiveKernel) AccountSpendableUTxO(accountID walletcore.AccountID) (wtxmgr.Utxo, error) {
	currentSlot := uint64(k.store.BlockStamp().Height)
	return k.store.Snapshot().AccountSpendableUTxO(accountID, currentSlot)
}

// AccountSpendableBalance is AccountSpendableUTxO's total.
func (k *PassiveKernel) AccountSpendableBalance(accountID walletcore.AccountID) (walletcore.Amount, error) {
	currentSlot := uint64(k.store.BlockStamp().Height)
	return k.store.Snapshot().AccountSpendableBalance(accountID, currentSlot)
}
