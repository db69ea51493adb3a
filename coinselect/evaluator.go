package coinselect

import (
	"encoding/binary"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
)

// EventKind tags the variant of a simulator Event, per spec.md §4.6's
// `{Deposit utxo | Pay outputs | NextSlot}`.
type EventKind int

const (
	EventDeposit EventKind = iota
	EventPay
	EventNextSlot
)

// Event is a single step of the deterministic stream the Simulator
// replays against a Policy.
type Event struct {
	Kind    EventKind
	Deposit []walletcore.TxOut // for EventDeposit
	Outputs []walletcore.TxOut // for EventPay
}

// PayOutcome records the result of a single EventPay step, successful or
// not, for the caller to fold into whatever histogram or time series it is
// building.
type PayOutcome struct {
	Slot      uint64
	Stats     Stats
	Err       *PolicyError
	Succeeded bool
}

// CommitPolicy decides, on each NextSlot, which of the simulator's pending
// (deposited or change) outputs graduate into spendable utxo and which
// stay pending for a later slot. spec.md §9 flags this as an explicit open
// question — "all pending transactions are promoted to utxo; partial-
// commit semantics are an explicit TODO... implementations should
// parameterize this policy rather than hard-code 'commit all'" — so Run
// takes one instead of always promoting everything.
type CommitPolicy func(pending wtxmgr.Utxo) (toCommit, remaining wtxmgr.Utxo)

// CommitAll promotes every pending output on the very next slot — the
// default behavior spec.md §9 describes, expressed as a swappable policy
// value rather than hard-coded into the Simulator.
func CommitAll(pending wtxmgr.Utxo) (wtxmgr.Utxo, wtxmgr.Utxo) {
	return pending.Clone(), make(wtxmgr.Utxo)
}

// CommitAboveAmount holds back any pending output smaller than threshold,
// promoting only the rest — a parameterized partial-commit policy, e.g.
// for modeling a wallet that waits for additional confirmation depth on
// dust-sized change before treating it as spendable.
func CommitAboveAmount(threshold walletcore.Amount) CommitPolicy {
	return func(pending wtxmgr.Utxo) (wtxmgr.Utxo, wtxmgr.Utxo) {
		toCommit := make(wtxmgr.Utxo)
		remaining := make(wtxmgr.Utxo)
		for in, out := range pending {
			if out.Amount >= threshold {
				toCommit[in] = out
			} else {
				remaining[in] = out
			}
		}
		return toCommit, remaining
	}
}

// Simulator replays a deterministic event stream against a single Policy,
// maintaining its own UTxO set so consecutive Pay events see the effect of
// prior ones, per spec.md §4.6. It has no persistence and no concurrency:
// Run is a plain synchronous fold. Deposits and a Pay's change output land
// in a pending set first; only CommitPolicy, run on NextSlot, makes them
// spendable.
type Simulator struct {
	policy Policy
	change ChangeAddress
	commit CommitPolicy

	utxo    wtxmgr.Utxo
	pending wtxmgr.Utxo

	slot    uint64
	counter uint64
}

// NewSimulator returns a Simulator starting from an empty UTxO set, using
// policy to satisfy Pay events, change to mint change-output addresses,
// and CommitAll to settle pending outputs on NextSlot.
func NewSimulator(policy Policy, change ChangeAddress) *Simulator {
	return NewSimulatorWithCommitPolicy(policy, change, CommitAll)
}

// NewSimulatorWithCommitPolicy is NewSimulator with an explicit,
// non-default CommitPolicy — see CommitPolicy's doc comment.
func NewSimulatorWithCommitPolicy(policy Policy, change ChangeAddress, commit CommitPolicy) *Simulator {
	return &Simulator{
		policy:  policy,
		change:  change,
		commit:  commit,
		utxo:    make(wtxmgr.Utxo),
		pending: make(wtxmgr.Utxo),
	}
}

// Run replays events in order, returning one PayOutcome per EventPay
// encountered. Deposit events credit pending; NextSlot runs CommitPolicy
// over it; Pay spends only from already-committed utxo.
func (s *Simulator) Run(events []Event) []PayOutcome {
	var outcomes []PayOutcome
	for _, ev := range events {
		switch ev.Kind {
		case EventDeposit:
			for _, out := range ev.Deposit {
				s.pending[s.nextSyntheticInput()] = out
			}
		case EventNextSlot:
			s.slot++
			toCommit, remaining := s.commit(s.pending)
			for in, out := range toCommit {
				s.utxo[in] = out
			}
			s.pending = remaining
		case EventPay:
			outcomes = append(outcomes, s.pay(ev.Outputs))
		}
	}
	return outcomes
}

func (s *Simulator) pay(outputs []walletcore.TxOut) PayOutcome {
	sel, stats, err := s.policy(s.utxo.Clone(), outputs, s.change)
	if err != nil {
		return PayOutcome{Slot: s.slot, Err: err.(*PolicyError)}
	}

	for _, in := range sel.Inputs {
		delete(s.utxo, in)
	}
	for _, out := range changeOutputsOf(sel, outputs) {
		s.pending[s.nextSyntheticInput()] = out
	}

	return PayOutcome{Slot: s.slot, Stats: stats, Succeeded: true}
}

// changeOutputsOf returns the outputs in sel.Outputs beyond the original
// requested outputs — i.e. whatever a Policy appended as change — since
// only those round-trip back into the simulator's own UTxO set. A Pay
// event's requested outputs are paid to the counterparty, not credited
// back to this wallet.
func changeOutputsOf(sel Selection, requested []walletcore.TxOut) []walletcore.TxOut {
	if len(sel.Outputs) <= len(requested) {
		return nil
	}
	return sel.Outputs[len(requested):]
}

// nextSyntheticInput mints a synthetic Input for outputs the simulator
// manufactures itself (deposits, change), since there is no real
// transaction backing them. The hash is derived from the slot and a
// monotonically increasing counter, so a Run over the same event stream
// always produces the same synthetic inputs.
func (s *Simulator) nextSyntheticInput() walletcore.Input {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], s.slot)
	binary.BigEndian.PutUint64(buf[8:], s.counter)
	s.counter++
	return walletcore.Input{TxHash: chainhash.HashH(buf[:]), Index: 0}
}
