package crypto

import (
	"github.com/iov-one/tokenswap"
)

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message, sig []byte) bool
	Address() tokenswap.Address
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() *PublicKey
}
