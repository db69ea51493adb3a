// Package walletcore defines the primitive types shared by every layer of
// the wallet kernel: the UTxO input/output shapes, account and wallet
// identifiers, and the resolved-block representation the Passive Kernel
// consumes. It deliberately treats addresses and transaction signing data
// as opaque byte blobs — cryptographic primitives are supplied by the
// embedding application and are out of scope for this module, per the
// kernel's design.
//
// Hashes and amounts are bound to github.com/abesuite/abec's own types
// (chainhash.Hash, abeutil.Amount) rather than reinvented, since those are
// exactly the primitives the rest of the abesuite tree already uses.
package walletcore

import (
	"encoding/hex"
	"fmt"

	"github.com/abesuite/abec/abeutil"
	"github.com/abesuite/abec/chainhash"
)

// Amount is a quantity of the ledger's base unit. It is abeutil.Amount
// directly so that values flow between this module and the rest of the
// abesuite tree without conversion.
type Amount = abeutil.Amount

// RootID identifies an HD root by the hash of its root public key.
type RootID = chainhash.Hash

// WalletID identifies an ESK entry in the Passive Kernel's key map. It is
// presently one-to-one with RootID for HD-random wallets, per spec.
type WalletID = chainhash.Hash

// AccountID identifies an account as the pair (RootID, index).
type AccountID struct {
	Root  RootID
	Index uint32
}

func (a AccountID) String() string {
	return fmt.Sprintf("%s/%d", a.Root, a.Index)
}

// Address is an opaque, comparable handle for a spendable destination.
// Derivation, encoding, and validation of addresses are the embedding
// application's concern; this module only ever compares and stores them.
type Address struct {
	raw string
}

// NewAddress wraps raw address bytes for storage in the ledger.
func NewAddress(raw []byte) Address {
	return Address{raw: string(raw)}
}

// Bytes returns the address's raw bytes.
func (a Address) Bytes() []byte {
	return []byte(a.raw)
}

func (a Address) String() string {
	return hex.EncodeToString([]byte(a.raw))
}

// IsZero reports whether a is the zero-value Address.
func (a Address) IsZero() bool {
	return a.raw == ""
}

// TxID identifies a transaction by its hash.
type TxID = chainhash.Hash

// Input identifies a single UTxO: the transaction that created it and the
// index of the output within that transaction.
type Input struct {
	TxHash chainhash.Hash
	Index  uint8
}

func (i Input) String() string {
	return fmt.Sprintf("%s:%d", i.TxHash, i.Index)
}

// TxOut is a single transaction output: a destination address and amount.
type TxOut struct {
	Address Address
	Amount  Amount
}

// Output pairs an Input with the TxOut it resolves to. It is the unit the
// prefilter and the account UTxO set both key on.
type Output struct {
	Input
	TxOut
}

// Tx is a minimal transaction shape: a set of inputs spent and a set of
// outputs created. It carries no witness/signature data — that belongs to
// the embedding application's transaction-construction layer.
type Tx struct {
	Hash    chainhash.Hash
	Inputs  []Input
	Outputs []TxOut
}

// ResolvedTx is a Tx where every input has been paired with the output it
// consumes, per spec.md's "Resolved block" definition.
type ResolvedTx struct {
	Tx
	Spent []TxOut // Spent[i] is the output that Inputs[i] consumes.
}

// BlockMeta carries the chain slot and timestamp of a block. Per spec.md
// §9's open question, this is plumbed end-to-end from ResolvedBlock through
// to per-account metadata even though no invariant consumes it yet.
type BlockMeta struct {
	Hash chainhash.Hash
	Slot uint64
	Time int64 // unix micros, matching the Clock interface's units.
}

// ResolvedBlock is a block whose every transaction input has been resolved
// to the output it consumes.
type ResolvedBlock struct {
	BlockMeta
	Txs []ResolvedTx
}
