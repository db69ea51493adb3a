package coinselect

import (
	"math/rand"
	"sort"

	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
)

// Selection is the transaction a Policy produces: the inputs it chose and
// the outputs it will create, change included. It carries no signature or
// script data — constructing the signed transaction from this shape is the
// embedding application's concern, per spec.md §1.
type Selection struct {
	Inputs  []walletcore.Input
	Outputs []walletcore.TxOut
}

// Stats records diagnostics about a single selection, per spec.md §4.6:
// chosen input count, change/payment ratio, and similar figures the
// evaluator aggregates into histograms and time series.
type Stats struct {
	InputCount    int
	PaymentAmount walletcore.Amount
	ChangeAmount  walletcore.Amount
	ChangeRatio   float64 // ChangeAmount / PaymentAmount; 0 when there is no change.
}

// ChangeAddress supplies the destination for any change output a policy
// produces. The harness treats it as opaque, matching walletcore.Address.
type ChangeAddress func() walletcore.Address

// Policy selects inputs from utxo to cover outputs, returning the
// resulting Selection and Stats, per spec.md §4.6's
// `policy(utxo, outputs) -> Result<(tx, stats), policy_error>`. A Policy
// must not mutate utxo.
type Policy func(utxo wtxmgr.Utxo, outputs []walletcore.TxOut, change ChangeAddress) (Selection, Stats, error)

type candidate struct {
	in  walletcore.Input
	out walletcore.TxOut
}

func candidates(utxo wtxmgr.Utxo) []candidate {
	out := make([]candidate, 0, len(utxo))
	for in, txo := range utxo {
		out = append(out, candidate{in: in, out: txo})
	}
	return out
}

func totalOf(outputs []walletcore.TxOut) walletcore.Amount {
	var total walletcore.Amount
	for _, o := range outputs {
		total += o.Amount
	}
	return total
}

func buildSelection(chosen []candidate, outputs []walletcore.TxOut, target, totalIn walletcore.Amount, change ChangeAddress) (Selection, Stats) {
	sel := Selection{Outputs: append([]walletcore.TxOut(nil), outputs...)}
	sel.Inputs = make([]walletcore.Input, len(chosen))
	for i, c := range chosen {
		sel.Inputs[i] = c.in
	}

	stats := Stats{
		InputCount:    len(chosen),
		PaymentAmount: target,
	}

	changeAmount := totalIn - target
	if changeAmount > 0 {
		sel.Outputs = append(sel.Outputs, walletcore.TxOut{
			Address: change(),
			Amount:  changeAmount,
		})
		stats.ChangeAmount = changeAmount
		if target > 0 {
			stats.ChangeRatio = float64(changeAmount) / float64(target)
		}
	}

	return sel, stats
}

// ExactSingleMatchOnly succeeds only if a single UTxO entry's amount equals
// the requested total exactly, avoiding a change output entirely. This is
// the most privacy-preserving and fee-efficient policy when it applies,
// per spec.md §4.6.
func ExactSingleMatchOnly(utxo wtxmgr.Utxo, outputs []walletcore.TxOut, change ChangeAddress) (Selection, Stats, error) {
	target := totalOf(outputs)
	for in, out := range utxo {
		if out.Amount == target {
			sel, stats := buildSelection([]candidate{{in: in, out: out}}, outputs, target, out.Amount, change)
			return sel, stats, nil
		}
	}
	if total := sumUtxo(utxo); total < target {
		return Selection{}, Stats{}, policyError(ErrInsufficientFunds,
			"no exact match and total utxo value is less than target")
	}
	return Selection{}, Stats{}, policyError(ErrNoSuitableInputs,
		"no single utxo entry exactly matches the requested amount")
}

// LargestFirst greedily selects the largest-valued outputs first until the
// running total covers outputs, per spec.md §4.6. It minimizes input count
// at the cost of leaking UTxO-size information to an observer.
func LargestFirst(utxo wtxmgr.Utxo, outputs []walletcore.TxOut, change ChangeAddress) (Selection, Stats, error) {
	target := totalOf(outputs)
	cs := candidates(utxo)
	sort.Slice(cs, func(i, j int) bool { return cs[i].out.Amount > cs[j].out.Amount })

	var chosen []candidate
	var total walletcore.Amount
	for _, c := range cs {
		chosen = append(chosen, c)
		total += c.out.Amount
		if total >= target {
			sel, stats := buildSelection(chosen, outputs, target, total, change)
			return sel, stats, nil
		}
	}
	return Selection{}, Stats{}, policyError(ErrInsufficientFunds,
		"total utxo value is less than target")
}

// Random returns a policy that selects inputs in a random order until the
// running total covers outputs, per spec.md §4.6's random(privacy_mode).
// With privacyMode on, the payment and change outputs are shuffled so an
// observer cannot assume the change output is always last; with it off,
// change (if any) is always appended last, matching common wallet
// behavior the teacher's txauthor package also defaults to.
func Random(rng *rand.Rand, privacyMode bool) Policy {
	return func(utxo wtxmgr.Utxo, outputs []walletcore.TxOut, change ChangeAddress) (Selection, Stats, error) {
		target := totalOf(outputs)
		cs := candidates(utxo)
		rng.Shuffle(len(cs), func(i, j int) { cs[i], cs[j] = cs[j], cs[i] })

		var chosen []candidate
		var total walletcore.Amount
		for _, c := range cs {
			chosen = append(chosen, c)
			total += c.out.Amount
			if total >= target {
				sel, stats := buildSelection(chosen, outputs, target, total, change)
				if privacyMode {
					rng.Shuffle(len(sel.Outputs), func(i, j int) {
						sel.Outputs[i], sel.Outputs[j] = sel.Outputs[j], sel.Outputs[i]
					})
				}
				return sel, stats, nil
			}
		}
		return Selection{}, Stats{}, policyError(ErrInsufficientFunds,
			"total utxo value is less than target")
	}
}

func sumUtxo(utxo wtxmgr.Utxo) walletcore.Amount {
	var total walletcore.Amount
	for _, out := range utxo {
		total += out.Amount
	}
	return total
}
