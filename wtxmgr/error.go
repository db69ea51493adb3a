package wtxmgr

import "fmt"

// ErrorCode identifies a class of error returned by this package, following
// the tagged-error-code convention used throughout the abesuite/btcsuite
// tree (see waddrmgr.ErrorCode, wire.MessageError).
type ErrorCode int

const (
	// ErrData indicates a corrupt or malformed on-disk/in-memory record.
	ErrData ErrorCode = iota

	// ErrInput indicates a caller supplied an argument that violates an
	// invariant of this package (e.g. a negative amount, a duplicate
	// input).
	ErrInput

	// ErrNoExist indicates a lookup by account, tx id, or input found no
	// matching record.
	ErrNoExist

	// ErrDuplicate indicates an insert would create a duplicate where
	// uniqueness is required.
	ErrDuplicate
)

var errorCodeStrings = map[ErrorCode]string{
	ErrData:      "ErrData",
	ErrInput:     "ErrInput",
	ErrNoExist:   "ErrNoExist",
	ErrDuplicate: "ErrDuplicate",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown ErrorCode (%d)", int(e))
}

// Error satisfies the error interface and carries additional information
// about a failing operation within the wtxmgr package.
type Error struct {
	Code        ErrorCode
	Description string
	Err         error
}

func (e *Error) Error() string {
	return e.Description
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause, if
// any.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(c ErrorCode, desc string, err error) *Error {
	return &Error{Code: c, Description: desc, Err: err}
}
