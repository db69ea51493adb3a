package waddrmgr

import (
	"fmt"

	"github.com/abesuite/utxowallet/walletcore"
)

// ErrorCode identifies a class of error returned from this package,
// following the same tagged-error convention the teacher's waddrmgr used
// (managerError/ManagerError).
type ErrorCode int

const (
	// ErrRootAlreadyExists indicates create_hd_wallet was called with a
	// RootID that is already present in the store.
	ErrRootAlreadyExists ErrorCode = iota

	// ErrUnknownRoot indicates a query referenced a RootID not present
	// in the store.
	ErrUnknownRoot

	// ErrUnknownAccount indicates a query or new_pending call referenced
	// an AccountID not present in the store.
	ErrUnknownAccount

	// ErrInputsUnavailable indicates new_pending was rejected because
	// one or more of the transaction's inputs are not currently
	// spendable from the account (absent from utxo, or already
	// reserved by another pending transaction).
	ErrInputsUnavailable

	// ErrInvariant indicates a programmer error / corrupted state was
	// detected: openSecret returns it for a short blob or a failed open,
	// and LoadSnapshot returns it when its consistency check fails.
	ErrInvariant
)

var errorCodeStrings = map[ErrorCode]string{
	ErrRootAlreadyExists: "ErrRootAlreadyExists",
	ErrUnknownRoot:       "ErrUnknownRoot",
	ErrUnknownAccount:    "ErrUnknownAccount",
	ErrInputsUnavailable: "ErrInputsUnavailable",
	ErrInvariant:         "ErrInvariant",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown ErrorCode (%d)", int(e))
}

// Error is returned by every fallible Store operation.
type Error struct {
	Code        ErrorCode
	Description string
	Err         error

	// Inputs carries the offending inputs for ErrInputsUnavailable, per
	// spec.md §7's NewPendingError::InputsUnavailable(list<Input>).
	Inputs []walletcore.Input
}

func (e *Error) Error() string {
	return e.Description
}

func (e *Error) Unwrap() error {
	return e.Err
}

func managerError(c ErrorCode, desc string, err error) *Error {
	return &Error{Code: c, Description: desc, Err: err}
}
