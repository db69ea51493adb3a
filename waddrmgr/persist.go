// Persistence adapter. spec.md §6 explicitly defers the production
// on-disk wire format. This file provides a snapshot dump (DumpSnapshot)
// and a load with a consistency check (LoadSnapshot); it has no event-log
// replay. Both are backed by
// go.etcd.io/bbolt (already a teacher dependency), using the same
// big-endian manual-encoding convention as the teacher's wtxmgr/db.go —
// scoped down to what a snapshot dump needs, since no wire format is
// mandated here.
package waddrmgr

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/abesuite/abec/chainhash"
	"github.com/abesuite/utxowallet/walletcore"
	"github.com/abesuite/utxowallet/wtxmgr"
	"go.etcd.io/bbolt"
)

func timeUnix(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

var (
	bucketRoots    = []byte("roots")
	bucketAccounts = []byte("accounts")
)

// DumpSnapshot writes a dump of view into db, overwriting any previous
// dump. It is the "snapshot dump" hook of spec.md §6. Only each root's
// name, assurance level, password flag and creation time (whole seconds)
// and each account's confirmed utxo are written; pending transactions,
// credit slots, account metadata and names, the passphrase hash and the
// store's last applied block stamp are not.
func DumpSnapshot(db *bbolt.DB, view *DbView) error {
	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRoots, bucketAccounts} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
		}
		roots, err := tx.CreateBucket(bucketRoots)
		if err != nil {
			return err
		}
		accounts, err := tx.CreateBucket(bucketAccounts)
		if err != nil {
			return err
		}

		for id, root := range view.s.roots {
			if err := roots.Put(id[:], serializeRoot(&root.RootRecord)); err != nil {
				return err
			}
		}
		for acctID, acct := range view.s.accounts {
			if err := accounts.Put(accountKey(acctID), serializeAccount(acct)); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSnapshot rebuilds a Store from the most recent dump in db, then runs
// a consistency check (every account balance recomputes to a non-negative
// total, and every account's root exists) before returning it — the
// "consistency check after load" hook of spec.md §6.
func LoadSnapshot(db *bbolt.DB) (*Store, error) {
	s := emptyState()

	err := db.View(func(tx *bbolt.Tx) error {
		roots := tx.Bucket(bucketRoots)
		if roots != nil {
			if err := roots.ForEach(func(k, v []byte) error {
				var id chainhash.Hash
				copy(id[:], k)
				record, err := deserializeRoot(id, v)
				if err != nil {
					return err
				}
				s.roots[id] = &Root{RootRecord: *record, Accounts: make(map[uint32]*AccountRecord)}
				return nil
			}); err != nil {
				return err
			}
		}

		accounts := tx.Bucket(bucketAccounts)
		if accounts != nil {
			return accounts.ForEach(func(k, v []byte) error {
				acctID, err := decodeAccountKey(k)
				if err != nil {
					return err
				}
				acct, err := deserializeAccount(acctID, v)
				if err != nil {
					return err
				}
				s.accounts[acctID] = acct
				if root, ok := s.roots[acctID.Root]; ok {
					ensureAccountRecord(root, acctID.Index)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	for acctID, acct := range s.accounts {
		if _, ok := s.roots[acctID.Root]; !ok {
			return nil, managerError(ErrInvariant,
				fmt.Sprintf("consistency check failed: account %v references unknown root", acctID), nil)
		}
		if acct.TotalBalance() < 0 {
			return nil, managerError(ErrInvariant,
				fmt.Sprintf("consistency check failed: account %v has a negative balance", acctID), nil)
		}
	}

	return &Store{cur: s}, nil
}

func accountKey(id walletcore.AccountID) []byte {
	key := make([]byte, chainhash.HashSize+4)
	copy(key, id.Root[:])
	binary.BigEndian.PutUint32(key[chainhash.HashSize:], id.Index)
	return key
}

func decodeAccountKey(k []byte) (walletcore.AccountID, error) {
	if len(k) != chainhash.HashSize+4 {
		return walletcore.AccountID{}, fmt.Errorf("malformed account key of length %d", len(k))
	}
	var id walletcore.AccountID
	copy(id.Root[:], k[:chainhash.HashSize])
	id.Index = binary.BigEndian.Uint32(k[chainhash.HashSize:])
	return id, nil
}

func serializeRoot(r *RootRecord) []byte {
	nameBytes := []byte(r.Name)
	buf := make([]byte, 0, 2+len(nameBytes)+1+1+8)
	buf = appendUint16Prefixed(buf, nameBytes)
	buf = append(buf, byte(r.Assurance))
	hasPw := byte(0)
	if r.HasPassword {
		hasPw = 1
	}
	buf = append(buf, hasPw)
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(r.CreatedAt.Unix()))
	buf = append(buf, tsBuf[:]...)
	return buf
}

func deserializeRoot(id chainhash.Hash, v []byte) (*RootRecord, error) {
	if len(v) < 2 {
		return nil, fmt.Errorf("malformed root record")
	}
	name, rest, err := readUint16Prefixed(v)
	if err != nil {
		return nil, err
	}
	if len(rest) < 10 {
		return nil, fmt.Errorf("malformed root record tail")
	}
	assurance := AssuranceLevel(rest[0])
	hasPassword := rest[1] != 0
	createdAtUnix := int64(binary.BigEndian.Uint64(rest[2:10]))
	return &RootRecord{
		ID:          id,
		Name:        string(name),
		Assurance:   assurance,
		HasPassword: hasPassword,
		CreatedAt:   timeUnix(createdAtUnix),
	}, nil
}

func serializeAccount(a *wtxmgr.Account) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(len(a.Utxo)))
	for in, out := range a.Utxo {
		buf = append(buf, in.TxHash[:]...)
		buf = append(buf, in.Index)
		buf = appendUint16Prefixed(buf, out.Address.Bytes())
		var amt [8]byte
		binary.BigEndian.PutUint64(amt[:], uint64(out.Amount))
		buf = append(buf, amt[:]...)
	}
	return buf
}

func deserializeAccount(id walletcore.AccountID, v []byte) (*wtxmgr.Account, error) {
	acct := wtxmgr.NewAccount(id)
	if len(v) < 4 {
		return nil, fmt.Errorf("malformed account record")
	}
	count := binary.BigEndian.Uint32(v[:4])
	rest := v[4:]
	for i := uint32(0); i < count; i++ {
		if len(rest) < chainhash.HashSize+1+2 {
			return nil, fmt.Errorf("truncated account record")
		}
		var in walletcore.Input
		copy(in.TxHash[:], rest[:chainhash.HashSize])
		rest = rest[chainhash.HashSize:]
		in.Index = rest[0]
		rest = rest[1:]

		addr, tail, err := readUint16Prefixed(rest)
		if err != nil {
			return nil, err
		}
		rest = tail
		if len(rest) < 8 {
			return nil, fmt.Errorf("truncated amount")
		}
		amount := walletcore.Amount(binary.BigEndian.Uint64(rest[:8]))
		rest = rest[8:]

		acct.Utxo[in] = walletcore.TxOut{Address: walletcore.NewAddress(addr), Amount: amount}
	}
	return acct, nil
}

func appendUint16Prefixed(buf, data []byte) []byte {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(data)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, data...)
}

func readUint16Prefixed(buf []byte) (data, rest []byte, err error) {
	if len(buf) < 2 {
		return nil, nil, fmt.Errorf("truncated length-prefixed field")
	}
	n := binary.BigEndian.Uint16(buf[:2])
	buf = buf[2:]
	if len(buf) < int(n) {
		return nil, nil, fmt.Errorf("truncated length-prefixed field body")
	}
	return buf[:n], buf[n:], nil
}
