// Package coinselect implements the pure, pluggable input-selection
// evaluation harness of spec.md §4.6: policies that turn a UTxO set and a
// set of desired payments into a transaction, plus a deterministic
// simulator for comparing them. It has no persistence and no concurrency —
// grounded on the teacher's wallet/txauthor and wallet/txrules packages
// (InputSource, InputSourceError, dust-threshold change handling) but
// reduced to the opaque walletcore shapes this module works with
// throughout, since txscript-level output construction is out of scope.
package coinselect

import "fmt"

// ErrorCode classifies why a policy could not produce a transaction.
type ErrorCode int

const (
	// ErrInsufficientFunds indicates the UTxO set's total value is less
	// than the sum of the requested outputs.
	ErrInsufficientFunds ErrorCode = iota

	// ErrNoSuitableInputs indicates funds are sufficient in aggregate but
	// no combination satisfying the policy's own constraints exists
	// (e.g. exact_single_match_only with no single matching output).
	ErrNoSuitableInputs
)

var errorCodeStrings = map[ErrorCode]string{
	ErrInsufficientFunds: "ErrInsufficientFunds",
	ErrNoSuitableInputs:  "ErrNoSuitableInputs",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown ErrorCode (%d)", int(c))
}

// PolicyError is returned by a Policy when it cannot satisfy the requested
// outputs from the given UTxO set, per spec.md §4.6's policy_error.
type PolicyError struct {
	Code        ErrorCode
	Description string
}

func (e *PolicyError) Error() string { return e.Description }

func policyError(c ErrorCode, desc string) *PolicyError {
	return &PolicyError{Code: c, Description: desc}
}
