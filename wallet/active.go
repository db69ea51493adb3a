package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/abesuite/utxowallet/submission"
	"github.com/abesuite/utxowallet/waddrmgr"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
	"github.com/lightningnetwork/lnd/clock"
)

// ActiveKernel composes a PassiveKernel with a Diffusion sink and a
// submission.Layer, per spec.md §4.5: everything the Passive Kernel does,
// plus locally originating and rebroadcasting pending transactions.
type ActiveKernel struct {
	*PassiveKernel

	diffusion  Diffusion
	submission *submission.Layer

	// minRelayFee is the floor NewPending enforces on a transaction's
	// implied fee (sum of spent utxo minus sum of its outputs). Zero, its
	// default, means no floor is enforced. Set via ApplyConfig.
	minRelayFee walletcore.Amount

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewActiveKernel wires passive, diffusion, and a submission Layer using
// clk and policy, per spec.md §4.5.
func NewActiveKernel(passive *PassiveKernel, diffusion Diffusion, clk clock.Clock, policy submission.Policy) *ActiveKernel {
	return &ActiveKernel{
		PassiveKernel: passive,
		diffusion:     diffusion,
		submission:    submission.New(clk, policy),
		quit:          make(chan struct{}),
	}
}

// NewPending derives accountID's change outputs from its wallet's ESK,
// registers tx as pending with the store, and — only on success — hands tx
// to the submission layer for scheduled (re)broadcast, per spec.md §4.5's
// new_pending.
func (k *ActiveKernel) NewPending(accountID walletcore.AccountID, tx walletcore.Tx) error {
	esk, ok := k.esks.get(accountID.Root)
	if !ok {
		return &waddrmgr.Error{
			Code:        waddrmgr.ErrUnknownAccount,
			Description: "no ESK known for root " + accountID.Root.String(),
		}
	}

	owned := make(wtxmgr.Utxo)
	for idx, out := range tx.Outputs {
		acctIdx, ok, err := esk.DeriveAccount(out.Address)
		if err != nil || !ok || acctIdx != accountID.Index {
			continue
		}
		in := walletcore.Input{TxHash: tx.Hash, Index: uint8(idx)}
		owned[in] = out
	}

	if k.minRelayFee > 0 {
		utxo, err := k.AccountUTxO(accountID)
		if err != nil {
			return err
		}
		var totalIn, totalOut walletcore.Amount
		for _, in := range tx.Inputs {
			totalIn += utxo[in].Amount
		}
		for _, out := range tx.Outputs {
			totalOut += out.Amount
		}
		if fee := totalIn - totalOut; fee < k.minRelayFee {
			return &FeeTooLowError{Fee: fee, MinRelayFee: k.minRelayFee}
		}
	}

	if err := k.Store().NewPending(accountID, tx, owned); err != nil {
		return err
	}

	k.submission.AddPending(accountID, map[walletcore.TxID]walletcore.Tx{tx.Hash: tx})
	return nil
}

// Tick drives the submission layer one step: transactions past their
// backoff cap are cancelled from the store, and everything due is handed
// to diffusion for (re)broadcast. Diffusion failures are logged and left
// for the next Tick, per spec.md §4.5/§7.
func (k *ActiveKernel) Tick() {
	cancelled, toSend := k.submission.Tick()

	if len(cancelled) > 0 {
		k.Store().CancelPending(cancelled)
	}

	for _, tx := range toSend {
		if err := k.diffusion.SendTx(tx); err != nil {
			log.Debugf("diffusion send failed for tx %v: %v", tx.Hash, &SendError{Err: err})
		}
	}
}

// Run starts a background ticker task invoking Tick every interval, per
// spec.md §4.5's scheduled ticker task. Call Stop to halt it.
func (k *ActiveKernel) Run(ctx context.Context, interval time.Duration) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				k.Tick()
			case <-k.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the ticker task started by Run and waits for it to exit.
func (k *ActiveKernel) Stop() {
	close(k.quit)
	k.wg.Wait()
}
