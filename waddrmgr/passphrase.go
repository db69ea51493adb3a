package waddrmgr

import (
	"crypto/rand"
	"io"

	"github.com/abesuite/utxowallet/walletcore"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// ScryptOptions holds the scrypt cost parameters used to derive a
// passphrase key, mirroring the teacher's waddrmgr.ScryptOptions (which
// wraps the same parameters for its own snacl-backed secret key).
type ScryptOptions struct {
	N, R, P int
}

// DefaultScryptOptions match the teacher's production defaults.
var DefaultScryptOptions = ScryptOptions{N: 262144, R: 8, P: 1}

// FastScryptOptions trade cost for speed, for tests.
var FastScryptOptions = ScryptOptions{N: 16, R: 8, P: 1}

const (
	scryptKeyLen = 32
	saltLen      = 32
)

// sealSecret derives a key from passphrase via scrypt and seals secret
// behind nacl/secretbox, returning salt || nonce || box. This is the
// passphrase-wrapping path spec.md §3's `has_password` flag calls for on
// an ESK, grounded on the teacher's scrypt-derived snacl.SecretKey (see
// waddrmgr/manager.go) though expressed directly over golang.org/x/crypto
// since the teacher's own snacl wrapper is not part of this module.
func sealSecret(secret, passphrase []byte, opts ScryptOptions) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	key, err := deriveKey(passphrase, salt, opts)
	if err != nil {
		return nil, err
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltLen+len(nonce)+len(secret)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, secret, &nonce, key)
	return out, nil
}

// openSecret reverses sealSecret, returning an *Error with code
// ErrInvariant on a wrong passphrase or corrupted blob.
func openSecret(sealed, passphrase []byte, opts ScryptOptions) ([]byte, error) {
	if len(sealed) < saltLen+24 {
		return nil, managerError(ErrInvariant, "sealed secret too short", nil)
	}
	salt := sealed[:saltLen]
	var nonce [24]byte
	copy(nonce[:], sealed[saltLen:saltLen+24])
	box := sealed[saltLen+24:]

	key, err := deriveKey(passphrase, salt, opts)
	if err != nil {
		return nil, err
	}

	secret, ok := secretbox.Open(nil, box, &nonce, key)
	if !ok {
		return nil, managerError(ErrInvariant, "invalid passphrase", nil)
	}
	return secret, nil
}

func deriveKey(passphrase, salt []byte, opts ScryptOptions) (*[32]byte, error) {
	derived, err := scrypt.Key(passphrase, salt, opts.N, opts.R, opts.P, scryptKeyLen)
	if err != nil {
		return nil, err
	}
	var key [32]byte
	copy(key[:], derived)
	return &key, nil
}

// NewESKWithPassword wraps secret behind passphrase before handing it to
// NewESK, for roots created with has_password=true. The caller is
// responsible for keeping passphrase off the heap longer than necessary;
// this function does not zero its input.
func NewESKWithPassword(walletID walletcore.WalletID, deriver AddressDeriver, secret, passphrase []byte, opts ScryptOptions) (ESK, error) {
	sealed, err := sealSecret(secret, passphrase, opts)
	if err != nil {
		return ESK{}, err
	}
	return NewESK(walletID, deriver, sealed), nil
}

// Unlock reverses NewESKWithPassword's sealing, returning the raw secret
// key bytes for an ESK created with has_password=true. Callers created
// with the plain NewESK constructor have nothing sealed to unlock; passing
// their ESK here returns whatever bytes were stored, garbage or not — this
// function only makes sense paired with NewESKWithPassword.
func (e ESK) Unlock(passphrase []byte, opts ScryptOptions) ([]byte, error) {
	return openSecret(e.secret, passphrase, opts)
}
