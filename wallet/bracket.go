package wallet

import (
	"context"
	"time"

	"github.com/abesuite/utxowallet/submission"
	"github.com/lightningnetwork/lnd/clock"
)

// BracketActiveWallet is the scope guard of spec.md §4.5: it builds an
// ActiveKernel over passive and diffusion, starts its ticker task, runs fn,
// and guarantees the ticker is stopped before returning — on a normal
// return, an error return, or a panic propagating out of fn.
func BracketActiveWallet(
	passive *PassiveKernel,
	diffusion Diffusion,
	clk clock.Clock,
	policy submission.Policy,
	tickInterval time.Duration,
	fn func(*ActiveKernel) error,
) error {
	active := NewActiveKernel(passive, diffusion, clk, policy)

	ctx, cancel := context.WithCancel(context.Background())
	active.Run(ctx, tickInterval)

	defer func() {
		cancel()
		active.Stop()
	}()

	return fn(active)
}
