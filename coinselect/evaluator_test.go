package coinselect

import (
	"testing"

	"github.com/abesuite/utxowallet/walletcore"
	"github.com/stretchr/testify/require"
)

func TestSimulatorDepositThenPay(t *testing.T) {
	sim := NewSimulator(LargestFirst, changeAddr)

	events := []Event{
		{Kind: EventDeposit, Deposit: []walletcore.TxOut{{Amount: 1000}}},
		{Kind: EventNextSlot},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 400}}},
	}

	outcomes := sim.Run(events)
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Succeeded)
	require.EqualValues(t, 1, outcomes[0].Slot)
	require.Equal(t, 1, outcomes[0].Stats.InputCount)
	require.EqualValues(t, 600, outcomes[0].Stats.ChangeAmount)
}

func TestSimulatorPayFailsWithoutFunds(t *testing.T) {
	sim := NewSimulator(LargestFirst, changeAddr)

	outcomes := sim.Run([]Event{
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 1}}},
	})

	require.Len(t, outcomes, 1)
	require.False(t, outcomes[0].Succeeded)
	require.Equal(t, ErrInsufficientFunds, outcomes[0].Err.Code)
}

func TestSimulatorChangeIsSpendableInSubsequentPay(t *testing.T) {
	sim := NewSimulator(LargestFirst, changeAddr)

	outcomes := sim.Run([]Event{
		{Kind: EventDeposit, Deposit: []walletcore.TxOut{{Amount: 1000}}},
		{Kind: EventNextSlot},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 400}}},
		// The 600 change from the pay above is only pending until the
		// next NextSlot commits it.
		{Kind: EventNextSlot},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 500}}},
	})

	require.Len(t, outcomes, 2)
	require.True(t, outcomes[0].Succeeded)
	require.True(t, outcomes[1].Succeeded)
}

// Without an intervening NextSlot, a Pay's change is not yet committed, so
// a following Pay cannot spend it even though the simulator "has" it.
func TestSimulatorChangeNotSpendableBeforeNextSlot(t *testing.T) {
	sim := NewSimulator(LargestFirst, changeAddr)

	outcomes := sim.Run([]Event{
		{Kind: EventDeposit, Deposit: []walletcore.TxOut{{Amount: 1000}}},
		{Kind: EventNextSlot},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 400}}},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 500}}},
	})

	require.Len(t, outcomes, 2)
	require.True(t, outcomes[0].Succeeded)
	require.False(t, outcomes[1].Succeeded)
	require.Equal(t, ErrInsufficientFunds, outcomes[1].Err.Code)
}

func TestHistogramAndSeries(t *testing.T) {
	sim := NewSimulator(LargestFirst, changeAddr)
	outcomes := sim.Run([]Event{
		{Kind: EventDeposit, Deposit: []walletcore.TxOut{{Amount: 1000}, {Amount: 500}}},
		{Kind: EventNextSlot},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 300}}},
	})

	hist := InputCountHistogram(outcomes)
	require.Equal(t, 1, hist.Counts[1])

	series := ChangeRatioSeries(outcomes)
	require.Len(t, series, 1)

	require.Zero(t, FailureRate(outcomes))
}

// CommitAboveAmount demonstrates the partial-commit policy spec.md §9
// calls for: a pending output below the threshold never graduates to
// spendable utxo, even across repeated NextSlot events.
func TestCommitAboveAmountWithholdsSmallChange(t *testing.T) {
	sim := NewSimulatorWithCommitPolicy(LargestFirst, changeAddr, CommitAboveAmount(50))

	outcomes := sim.Run([]Event{
		{Kind: EventDeposit, Deposit: []walletcore.TxOut{{Amount: 1000}}},
		{Kind: EventNextSlot},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 990}}},
		{Kind: EventNextSlot},
		{Kind: EventNextSlot},
		{Kind: EventPay, Outputs: []walletcore.TxOut{{Amount: 10}}},
	})

	require.Len(t, outcomes, 2)
	require.True(t, outcomes[0].Succeeded)
	require.EqualValues(t, 10, outcomes[0].Stats.ChangeAmount)
	// The 10 change stays pending under this policy, so the second Pay
	// finds nothing committed to spend.
	require.False(t, outcomes[1].Succeeded)
	require.Equal(t, ErrInsufficientFunds, outcomes[1].Err.Code)
}
