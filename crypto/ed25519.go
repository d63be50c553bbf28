package crypto

import (
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"golang.org/x/crypto/ed25519"
)

// SignatureLength is the size of an ed25519 signature.
const SignatureLength = ed25519.SignatureSize

// PublicKey is an ed25519 public key. Its bytes are the ledger address of
// the account it controls.
type PublicKey struct {
	key ed25519.PublicKey
}

var _ PubKey = (*PublicKey)(nil)

// PublicKeyFromAddress treats given address as an ed25519 public key.
func PublicKeyFromAddress(a tokenswap.Address) *PublicKey {
	return &PublicKey{key: ed25519.PublicKey(a.Bytes())}
}

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message, sig []byte) bool {
	if p == nil || len(p.key) != ed25519.PublicKeySize || len(sig) != SignatureLength {
		return false
	}
	return ed25519.Verify(p.key, message, sig)
}

// Address returns the ledger address controlled by this key.
func (p *PublicKey) Address() tokenswap.Address {
	var a tokenswap.Address
	if p != nil {
		copy(a[:], p.key)
	}
	return a
}

// PrivateKey is an ed25519 signing key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) ([]byte, error) {
	if p == nil || len(p.key) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInvalidState, "empty private key")
	}
	return ed25519.Sign(p.key, message), nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := p.key.Public().(ed25519.PublicKey)
	return &PublicKey{key: pub}
}

// Address is a shortcut for PublicKey().Address().
func (p *PrivateKey) Address() tokenswap.Address {
	return p.PublicKey().Address()
}

// Seed returns the 32 byte seed the key was generated from.
func (p *PrivateKey) Seed() []byte {
	return p.key.Seed()
}

// MarshalJSON encodes the key seed as hex.
func (p *PrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p.Seed()))
}

func (p *PrivateKey) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	seed, err := hex.DecodeString(enc)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "private key seed must be hex encoded")
	}
	if len(seed) != ed25519.SeedSize {
		return errors.Wrapf(errors.ErrInvalidInput, "seed length %d", len(seed))
	}
	p.key = ed25519.NewKeyFromSeed(seed)
	return nil
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	if len(seed) != ed25519.SeedSize {
		panic(errors.Wrapf(errors.ErrInvalidInput, "seed length %d", len(seed)))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}
}
