package wallet

import (
	"sync"

	"github.com/abesuite/utxowallet/waddrmgr"
	"github.com/abesuite/utxowallet/walletcore"
)

// eskMap is the Passive Kernel's process-local table of WalletID to ESK,
// per spec.md §3/§4.3. It is never persisted and never handed out by
// reference across the module boundary — only WalletIDs and the narrow
// AddressDeriver capability leave this type. Concurrent readers take a
// shared lock; insertion takes an exclusive one, per spec.md §4.3's ESK
// map policy.
type eskMap struct {
	mu   sync.RWMutex
	esks map[walletcore.WalletID]waddrmgr.ESK
}

func newESKMap() *eskMap {
	return &eskMap{esks: make(map[walletcore.WalletID]waddrmgr.ESK)}
}

// insert adds esk under id. Insertion is idempotent per WalletID: a second
// insert for the same id silently replaces the first, matching spec.md
// §4.3's "Insertions are idempotent per WalletId".
func (m *eskMap) insert(id walletcore.WalletID, esk waddrmgr.ESK) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.esks[id] = esk
}

func (m *eskMap) get(id walletcore.WalletID) (waddrmgr.ESK, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	esk, ok := m.esks[id]
	return esk, ok
}

// all returns a shallow copy of the map, safe for the caller to iterate
// without holding the eskMap's lock.
func (m *eskMap) all() map[walletcore.WalletID]waddrmgr.ESK {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[walletcore.WalletID]waddrmgr.ESK, len(m.esks))
	for k, v := range m.esks {
		out[k] = v
	}
	return out
}
