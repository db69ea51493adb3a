package waddrmgr

import (
	"time"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/walletcore"
)

// AssuranceLevel is a Root's policy for how many confirmations a credited
// output needs before DbView.AccountSpendableUTxO/AccountSpendableBalance
// (and wallet.PassiveKernel's wrappers around them) treat it as spendable.
type AssuranceLevel int

const (
	// AssuranceNormal requires no extra confirmation depth beyond a
	// single confirming block.
	AssuranceNormal AssuranceLevel = iota

	// AssuranceStrict requires StrictAssuranceDepth confirming blocks
	// before a credit is considered settled.
	AssuranceStrict
)

// StrictAssuranceDepth is the number of confirming blocks AssuranceStrict
// requires.
const StrictAssuranceDepth = 9

// RootRecord is the top of an HD tree, per spec.md §3.
type RootRecord struct {
	ID             walletcore.RootID
	Name           string
	Assurance      AssuranceLevel
	HasPassword    bool
	CreatedAt      time.Time
	PassphraseHash []byte // set only when HasPassword; opaque, never the passphrase itself.
}

// Root is the stored Root plus its accounts, keyed by account index.
type Root struct {
	RootRecord
	Accounts map[uint32]*AccountRecord
}

// AccountRecord is the store's bookkeeping for an account beyond the UTxO
// and pending state that wtxmgr.Account owns — presently just the name,
// mirroring the teacher's per-account name field.
type AccountRecord struct {
	Index uint32
	Name  string
}

// BlockStamp identifies the block a wallet or account is synced to,
// matching the teacher's waddrmgr.BlockStamp shape. Store.BlockStamp
// reports the most recent one applied via ApplyBlock.
type BlockStamp struct {
	Height    int32
	Hash      chainhash.Hash
	Timestamp time.Time
}

// AddressDeriver is the capability an ESK exposes to the prefilter: given an
// address, report whether this wallet owns it and, if so, which account
// index it belongs to. It stands in for the opaque HD derivation scheme
// spec.md §1 excludes from this module's scope (cryptographic primitives
// are supplied by the embedding application).
type AddressDeriver interface {
	// DeriveAccount returns the account index owning addr. ok is false
	// when this deriver's wallet does not own addr. An error is returned
	// only for a malformed address, per spec.md §4.1's DerivationError —
	// such an output is skipped, not fatal to the whole block.
	DeriveAccount(addr walletcore.Address) (index uint32, ok bool, err error)
}

// DerivationError wraps a failure to derive the owning account for an
// address. Per spec.md §4.1, these are logged and skipped, never fatal.
type DerivationError struct {
	Address walletcore.Address
	Err     error
}

func (e *DerivationError) Error() string {
	return "derivation failed for address " + e.Address.String() + ": " + e.Err.Error()
}

func (e *DerivationError) Unwrap() error { return e.Err }

// ESK is the opaque keying material for a wallet — "Encrypted Secret Key"
// per spec.md §3. The store and submission layer hold only a WalletID
// pointing at an ESK; the ESK itself, and the private key bytes it wraps,
// never leave the Passive Kernel's process-local map.
type ESK struct {
	walletID walletcore.WalletID
	deriver  AddressDeriver
	secret   []byte // opaque; never serialized, never logged.
}

// NewESK wraps secret key material behind an AddressDeriver capability.
func NewESK(walletID walletcore.WalletID, deriver AddressDeriver, secret []byte) ESK {
	return ESK{walletID: walletID, deriver: deriver, secret: secret}
}

// WalletID returns the identifier this ESK is keyed by in the Passive
// Kernel's map.
func (e ESK) WalletID() walletcore.WalletID { return e.walletID }

// DeriveAccount delegates to the wrapped AddressDeriver.
func (e ESK) DeriveAccount(addr walletcore.Address) (uint32, bool, error) {
	return e.deriver.DeriveAccount(addr)
}
