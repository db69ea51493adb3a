package wallet

import (
	"testing"
	"time"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/submission"
	"github.com/abesuite/utxowallet/waddrmgr"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

// fixedDeriver owns exactly the addresses in owns, all under account 0.
type fixedDeriver struct {
	owns map[string]bool
}

func (d *fixedDeriver) DeriveAccount(addr walletcore.Address) (uint32, bool, error) {
	if d.owns[addr.String()] {
		return 0, true, nil
	}
	return 0, false, nil
}

func hash(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func TestPassiveKernelCreateAndApplyBlock(t *testing.T) {
	store := waddrmgr.New()
	kernel := NewPassiveKernel(store)

	addr := walletcore.NewAddress([]byte{1})
	deriver := &fixedDeriver{owns: map[string]bool{addr.String(): true}}
	esk := waddrmgr.NewESK(hash(1), deriver, nil)

	accountIDs, err := kernel.CreateWalletHDRandom(
		"primary", false, waddrmgr.AssuranceNormal, hash(1), hash(1), esk,
		walletcore.ResolvedBlock{},
	)
	require.NoError(t, err)
	require.Empty(t, accountIDs)

	acctID := walletcore.AccountID{Root: hash(1), Index: 0}
	block := walletcore.ResolvedBlock{
		BlockMeta: walletcore.BlockMeta{Hash: hash(10), Slot: 1},
		Txs: []walletcore.ResolvedTx{
			{
				Tx: walletcore.Tx{
					Hash:    hash(2),
					Outputs: []walletcore.TxOut{{Address: addr, Amount: 1000}},
				},
			},
		},
	}
	kernel.ApplyBlock(block)

	balance, err := kernel.AccountTotalBalance(acctID)
	require.NoError(t, err)
	require.EqualValues(t, 1000, balance)
}

func TestActiveKernelNewPendingAndTick(t *testing.T) {
	store := waddrmgr.New()
	passive := NewPassiveKernel(store)

	addr := walletcore.NewAddress([]byte{1})
	deriver := &fixedDeriver{owns: map[string]bool{addr.String(): true}}
	esk := waddrmgr.NewESK(hash(1), deriver, nil)

	_, err := passive.CreateWalletHDRandom(
		"primary", false, waddrmgr.AssuranceNormal, hash(1), hash(1), esk,
		walletcore.ResolvedBlock{},
	)
	require.NoError(t, err)

	acctID := walletcore.AccountID{Root: hash(1), Index: 0}
	block := walletcore.ResolvedBlock{
		BlockMeta: walletcore.BlockMeta{Hash: hash(10), Slot: 1},
		Txs: []walletcore.ResolvedTx{
			{Tx: walletcore.Tx{Hash: hash(2), Outputs: []walletcore.TxOut{{Address: addr, Amount: 1000}}}},
		},
	}
	passive.ApplyBlock(block)

	diffusion := &mockDiffusion{}
	tc := clock.NewTestClock(time.Now())
	active := NewActiveKernel(passive, diffusion, tc, submission.Policy{
		Wait: func(uint32) time.Duration { return 0 },
		Cap:  255,
	})

	utxo, err := passive.AccountUTxO(acctID)
	require.NoError(t, err)
	require.Len(t, utxo, 1)

	var spent walletcore.Input
	for in := range utxo {
		spent = in
	}

	tx := walletcore.Tx{
		Hash:    hash(3),
		Inputs:  []walletcore.Input{spent},
		Outputs: []walletcore.TxOut{{Address: walletcore.NewAddress([]byte{99}), Amount: 1000}},
	}
	require.NoError(t, active.NewPending(acctID, tx))

	active.Tick()
	require.Len(t, diffusion.Sent(), 1)
	require.Equal(t, tx.Hash, diffusion.Sent()[0].Hash)
}

func TestActiveKernelEnforcesMinRelayFeeFromConfig(t *testing.T) {
	store := waddrmgr.New()
	passive := NewPassiveKernel(store)

	addr := walletcore.NewAddress([]byte{1})
	deriver := &fixedDeriver{owns: map[string]bool{addr.String(): true}}
	esk := waddrmgr.NewESK(hash(1), deriver, nil)

	_, err := passive.CreateWalletHDRandom(
		"primary", false, waddrmgr.AssuranceNormal, hash(1), hash(1), esk,
		walletcore.ResolvedBlock{},
	)
	require.NoError(t, err)

	acctID := walletcore.AccountID{Root: hash(1), Index: 0}
	block := walletcore.ResolvedBlock{
		BlockMeta: walletcore.BlockMeta{Hash: hash(10), Slot: 1},
		Txs: []walletcore.ResolvedTx{
			{Tx: walletcore.Tx{Hash: hash(2), Outputs: []walletcore.TxOut{{Address: addr, Amount: 1000}}}},
		},
	}
	passive.ApplyBlock(block)

	diffusion := &mockDiffusion{}
	tc := clock.NewTestClock(time.Now())
	active := NewActiveKernel(passive, diffusion, tc, submission.DefaultPolicy)

	cfg, err := ParseConfig([]string{"--minrelayfee=0.1"})
	require.NoError(t, err)
	active.ApplyConfig(cfg)

	utxo, err := passive.AccountUTxO(acctID)
	require.NoError(t, err)
	var spent walletcore.Input
	for in := range utxo {
		spent = in
	}

	// Spends the full 1000 with no fee left over — rejected.
	tx := walletcore.Tx{
		Hash:    hash(3),
		Inputs:  []walletcore.Input{spent},
		Outputs: []walletcore.TxOut{{Address: walletcore.NewAddress([]byte{99}), Amount: 1000}},
	}
	err = active.NewPending(acctID, tx)
	require.Error(t, err)
	var feeErr *FeeTooLowError
	require.ErrorAs(t, err, &feeErr)
}

func TestBracketActiveWalletStopsTickerOnExit(t *testing.T) {
	store := waddrmgr.New()
	passive := NewPassiveKernel(store)
	diffusion := &mockDiffusion{}
	tc := clock.NewTestClock(time.Now())

	var sawActive *ActiveKernel
	err := BracketActiveWallet(passive, diffusion, tc, submission.DefaultPolicy, time.Millisecond,
		func(active *ActiveKernel) error {
			sawActive = active
			return nil
		},
	)
	require.NoError(t, err)
	require.NotNil(t, sawActive)
}
