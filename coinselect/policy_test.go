package coinselect

import (
	"math/rand"
	"testing"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
	"github.com/stretchr/testify/require"
)

func in(b byte) walletcore.Input {
	var h chainhash.Hash
	h[0] = b
	return walletcore.Input{TxHash: h}
}

func changeAddr() walletcore.Address {
	return walletcore.NewAddress([]byte{0xff})
}

func TestExactSingleMatchOnly(t *testing.T) {
	utxo := wtxmgr.Utxo{
		in(1): {Amount: 500},
		in(2): {Amount: 1000},
	}
	outputs := []walletcore.TxOut{{Amount: 1000}}

	sel, stats, err := ExactSingleMatchOnly(utxo, outputs, changeAddr)
	require.NoError(t, err)
	require.Equal(t, []walletcore.Input{in(2)}, sel.Inputs)
	require.Len(t, sel.Outputs, 1) // no change output
	require.Zero(t, stats.ChangeAmount)
}

func TestExactSingleMatchOnlyNoSuitableInputs(t *testing.T) {
	utxo := wtxmgr.Utxo{in(1): {Amount: 500}, in(2): {Amount: 700}}
	outputs := []walletcore.TxOut{{Amount: 1000}}

	_, _, err := ExactSingleMatchOnly(utxo, outputs, changeAddr)
	require.Error(t, err)
	var perr *PolicyError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ErrNoSuitableInputs, perr.Code)
}

func TestExactSingleMatchOnlyInsufficientFunds(t *testing.T) {
	utxo := wtxmgr.Utxo{in(1): {Amount: 100}}
	outputs := []walletcore.TxOut{{Amount: 1000}}

	_, _, err := ExactSingleMatchOnly(utxo, outputs, changeAddr)
	require.Error(t, err)
	var perr *PolicyError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ErrInsufficientFunds, perr.Code)
}

func TestLargestFirstProducesChange(t *testing.T) {
	utxo := wtxmgr.Utxo{
		in(1): {Amount: 300},
		in(2): {Amount: 900},
		in(3): {Amount: 50},
	}
	outputs := []walletcore.TxOut{{Amount: 800}}

	sel, stats, err := LargestFirst(utxo, outputs, changeAddr)
	require.NoError(t, err)
	require.Equal(t, 1, stats.InputCount)
	require.Equal(t, []walletcore.Input{in(2)}, sel.Inputs)
	require.Len(t, sel.Outputs, 2) // payment + change
	require.EqualValues(t, 100, stats.ChangeAmount)
}

func TestLargestFirstInsufficientFunds(t *testing.T) {
	utxo := wtxmgr.Utxo{in(1): {Amount: 10}}
	outputs := []walletcore.TxOut{{Amount: 1000}}

	_, _, err := LargestFirst(utxo, outputs, changeAddr)
	require.Error(t, err)
	var perr *PolicyError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ErrInsufficientFunds, perr.Code)
}

func TestSelectAndLockExcludesLockedAndLocksChosen(t *testing.T) {
	acct := wtxmgr.NewAccount(walletcore.AccountID{})
	acct.Utxo[in(1)] = walletcore.TxOut{Amount: 500}
	acct.Utxo[in(2)] = walletcore.TxOut{Amount: 1000}

	holder, err := wtxmgr.NewLockID()
	require.NoError(t, err)

	outputs := []walletcore.TxOut{{Amount: 1000}}
	sel, _, err := SelectAndLock(acct, holder, ExactSingleMatchOnly, outputs, changeAddr)
	require.NoError(t, err)
	require.Equal(t, []walletcore.Input{in(2)}, sel.Inputs)
	require.True(t, acct.IsLocked(in(2)))

	// The output SelectAndLock just locked is no longer visible to a
	// later selection attempt for the same amount.
	_, _, err = SelectAndLock(acct, holder, ExactSingleMatchOnly, outputs, changeAddr)
	require.Error(t, err)

	acct.UnlockOutput(holder, in(2))
	require.False(t, acct.IsLocked(in(2)))

	sel, _, err = SelectAndLock(acct, holder, ExactSingleMatchOnly, outputs, changeAddr)
	require.NoError(t, err)
	require.Equal(t, []walletcore.Input{in(2)}, sel.Inputs)
}

func TestRandomSelectsEnoughToCoverTarget(t *testing.T) {
	utxo := wtxmgr.Utxo{
		in(1): {Amount: 100},
		in(2): {Amount: 100},
		in(3): {Amount: 100},
		in(4): {Amount: 100},
	}
	outputs := []walletcore.TxOut{{Amount: 250}}

	policy := Random(rand.New(rand.NewSource(1)), false)
	sel, stats, err := policy(utxo, outputs, changeAddr)
	require.NoError(t, err)

	var total walletcore.Amount
	for _, in := range sel.Inputs {
		total += utxo[in].Amount
	}
	require.GreaterOrEqual(t, total, walletcore.Amount(250))
	require.Equal(t, len(sel.Inputs), stats.InputCount)
}
