package sigs

import (
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by VerifyTxSignatures.
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// transaction without its signatures.
	GetSignBytes() ([]byte, error)

	// Signatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a single ed25519 signature of a transaction. The public
// key doubles as the address of the signer.
type StdSignature struct {
	Pubkey    tokenswap.Address
	Sequence  int64
	Signature []byte
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey.IsZero() {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature) != crypto.SignatureLength {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

// Marshal encodes the signature using the protobuf wire format.
func (s *StdSignature) Marshal() ([]byte, error) {
	return tokenswap.NewFieldWriter().
		Bytes(1, s.Pubkey[:]).
		Varint(2, uint64(s.Sequence)).
		Bytes(3, s.Signature).
		Result()
}

// Unmarshal decodes the protobuf wire format. Unknown fields are rejected.
func (s *StdSignature) Unmarshal(raw []byte) error {
	*s = StdSignature{}
	r := tokenswap.NewFieldReader(raw)
	for r.More() {
		field, wire, err := r.Next()
		if err != nil {
			return errors.Wrap(err, "signature")
		}
		switch field {
		case 1:
			if err := tokenswap.Expect(field, wire, tokenswap.WireBytes); err != nil {
				return err
			}
			b, err := r.Bytes()
			if err != nil {
				return errors.Wrap(err, "pubkey")
			}
			if s.Pubkey, err = tokenswap.AddressFromBytes(b); err != nil {
				return errors.Wrap(err, "pubkey")
			}
		case 2:
			if err := tokenswap.Expect(field, wire, tokenswap.WireVarint); err != nil {
				return err
			}
			v, err := r.Varint()
			if err != nil {
				return errors.Wrap(err, "sequence")
			}
			s.Sequence = int64(v)
		case 3:
			if err := tokenswap.Expect(field, wire, tokenswap.WireBytes); err != nil {
				return err
			}
			if s.Signature, err = r.Bytes(); err != nil {
				return errors.Wrap(err, "signature")
			}
		default:
			return errors.Wrapf(errors.ErrInvalidInput, "unknown signature field %d", field)
		}
	}
	return nil
}
