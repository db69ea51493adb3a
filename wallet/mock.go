package wallet

import (
	"sync"

	"github.com/abesuite/utxowallet/walletcore"
)

// mockDiffusion records every transaction SendTx accepts, for assertions
// in submission-layer integration tests. SendTx never errors unless Fail is
// set, letting a test force retry/cancellation paths; while Fail is set it
// returns Fail and records nothing.
type mockDiffusion struct {
	mu   sync.Mutex
	sent []walletcore.Tx
	Fail error
}

var _ Diffusion = (*mockDiffusion)(nil)

func (m *mockDiffusion) SendTx(tx walletcore.Tx) error {
	if m.Fail != nil {
		return m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, tx)
	return nil
}

func (m *mockDiffusion) Sent() []walletcore.Tx {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]walletcore.Tx, len(m.sent))
	copy(out, m.sent)
	return out
}
