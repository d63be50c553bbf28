package weavetest

import (
	"crypto/sha256"

	"github.com/iov-one/tokenswap/crypto"
)

// NewKey returns a random key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// KeyFromName returns a key derived from name. The same name always
// returns the same key, which keeps test output stable.
func KeyFromName(name string) *crypto.PrivateKey {
	seed := sha256.Sum256([]byte(name))
	return crypto.PrivKeyEd25519FromSeed(seed[:])
}
