package coinselect

import (
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
)

// SelectAndLock runs policy over account's utxo, excluding any output
// already locked, and on success locks every chosen input under holder, so
// a later SelectAndLock on the same Account does not choose them again.
// The locks live only on this *wtxmgr.Account value: Store.NewPending does
// not consult them, and Account has no internal synchronization, so calls
// on one Account are not safe to run concurrently. A lock stays until
// account.UnlockOutput releases it.
func SelectAndLock(account *wtxmgr.Account, holder wtxmgr.LockID, policy Policy, outputs []walletcore.TxOut, change ChangeAddress) (Selection, Stats, error) {
	spendable := make(wtxmgr.Utxo, len(account.Utxo))
	for in, out := range account.Utxo {
		if account.IsLocked(in) {
			continue
		}
		spendable[in] = out
	}

	sel, stats, err := policy(spendable, outputs, change)
	if err != nil {
		return Selection{}, Stats{}, err
	}

	for i, in := range sel.Inputs {
		if err := account.LockOutput(holder, in); err != nil {
			for _, done := range sel.Inputs[:i] {
				account.UnlockOutput(holder, done)
			}
			return Selection{}, Stats{}, err
		}
	}
	return sel, stats, nil
}
