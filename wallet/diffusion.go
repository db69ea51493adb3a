package wallet

import (
	"fmt"

	"github.com/abesuite/utxowallet/walletcore"
)

// Diffusion is the network-broadcast interface the Active Kernel's ticker
// sends confirmed-pending transactions through, per spec.md §6. It is a
// fire-and-forget send: the submission layer treats any error as "try
// again later" and never inspects it beyond that.
type Diffusion interface {
	SendTx(tx walletcore.Tx) error
}

// SendError is the opaque diffusion failure type of spec.md §7. It carries
// no structured detail — the submission layer's response to any SendError
// is identical (retry on the next tick), so there is nothing for a caller
// to branch on.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return "diffusion send failed: " + e.Err.Error() }
func (e *SendError) Unwrap() error { return e.Err }

// FeeTooLowError is returned by ActiveKernel.NewPending when a
// transaction's implied fee falls below the Config.MinRelayFee floor
// applied via ApplyConfig.
type FeeTooLowError struct {
	Fee, MinRelayFee walletcore.Amount
}

func (e *FeeTooLowError) Error() string {
	return fmt.Sprintf("transaction fee %v below minimum relay fee %v", e.Fee, e.MinRelayFee)
}
