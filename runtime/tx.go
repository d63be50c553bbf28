package runtime

import (
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/sigs"
)

// MaxInstructions limits the number of instructions of a single transaction.
const MaxInstructions = 32

// Tx is the unit of execution. All instructions succeed or the
// transaction has no effect.
type Tx struct {
	Instructions []tokenswap.Instruction
	Signatures   []*sigs.StdSignature
}

var _ sigs.SignedTx = (*Tx)(nil)

// NewTx returns an unsigned transaction.
func NewTx(ixs ...tokenswap.Instruction) *Tx {
	return &Tx{Instructions: ixs}
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the encoded transaction without signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Instructions: tx.Instructions}
	return unsigned.Marshal()
}

// Sign appends a signature of given signer.
func (tx *Tx) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// Signers returns every address that must sign, in order of first use.
func (tx *Tx) Signers() []tokenswap.Address {
	seen := make(map[tokenswap.Address]bool)
	var res []tokenswap.Address
	for _, ix := range tx.Instructions {
		for _, s := range ix.Signers() {
			if !seen[s] {
				seen[s] = true
				res = append(res, s)
			}
		}
	}
	return res
}

// Validate checks the size limits of the transaction.
func (tx *Tx) Validate() error {
	if len(tx.Instructions) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no instructions")
	}
	if len(tx.Instructions) > MaxInstructions {
		return errors.Wrapf(errors.ErrInvalidInput, "%d instructions", len(tx.Instructions))
	}
	for i, ix := range tx.Instructions {
		if err := ix.Validate(); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	w := tokenswap.NewFieldWriter()
	for _, ix := range tx.Instructions {
		w.Message(1, wireInstruction(ix))
	}
	for _, s := range tx.Signatures {
		w.Message(2, s)
	}
	return w.Result()
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	r := tokenswap.NewFieldReader(raw)
	for r.More() {
		field, wire, err := r.Next()
		if err != nil {
			return err
		}
		if err := tokenswap.Expect(field, wire, tokenswap.WireBytes); err != nil {
			return err
		}
		b, err := r.Bytes()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			var ix wireInstruction
			if err := ix.Unmarshal(b); err != nil {
				return errors.Wrapf(err, "instruction %d", len(tx.Instructions))
			}
			tx.Instructions = append(tx.Instructions, tokenswap.Instruction(ix))
		case 2:
			var s sigs.StdSignature
			if err := s.Unmarshal(b); err != nil {
				return errors.Wrapf(err, "signature %d", len(tx.Signatures))
			}
			tx.Signatures = append(tx.Signatures, &s)
		default:
			return errors.Wrapf(errors.ErrInvalidInput, "unknown tx field %d", field)
		}
	}
	return nil
}

type wireInstruction tokenswap.Instruction

func (ix wireInstruction) Marshal() ([]byte, error) {
	w := tokenswap.NewFieldWriter().Bytes(1, ix.ProgramID[:])
	for _, m := range ix.Accounts {
		w.Message(2, wireMeta(m))
	}
	return w.Bytes(3, ix.Data).Result()
}

func (ix *wireInstruction) Unmarshal(raw []byte) error {
	r := tokenswap.NewFieldReader(raw)
	for r.More() {
		field, wire, err := r.Next()
		if err != nil {
			return err
		}
		if err := tokenswap.Expect(field, wire, tokenswap.WireBytes); err != nil {
			return err
		}
		b, err := r.Bytes()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if ix.ProgramID, err = tokenswap.AddressFromBytes(b); err != nil {
				return errors.Wrap(err, "program id")
			}
		case 2:
			var m wireMeta
			if err := m.Unmarshal(b); err != nil {
				return errors.Wrapf(err, "account %d", len(ix.Accounts))
			}
			ix.Accounts = append(ix.Accounts, tokenswap.AccountMeta(m))
		case 3:
			ix.Data = b
		default:
			return errors.Wrapf(errors.ErrInvalidInput, "unknown instruction field %d", field)
		}
	}
	return nil
}

const (
	flagSigner = 1 << iota
	flagWritable
)

type wireMeta tokenswap.AccountMeta

func (m wireMeta) Marshal() ([]byte, error) {
	var flags uint64
	if m.IsSigner {
		flags |= flagSigner
	}
	if m.IsWritable {
		flags |= flagWritable
	}
	return tokenswap.NewFieldWriter().
		Bytes(1, m.Key[:]).
		Varint(2, flags).
		Result()
}

func (m *wireMeta) Unmarshal(raw []byte) error {
	r := tokenswap.NewFieldReader(raw)
	for r.More() {
		field, wire, err := r.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if err := tokenswap.Expect(field, wire, tokenswap.WireBytes); err != nil {
				return err
			}
			b, err := r.Bytes()
			if err != nil {
				return err
			}
			if m.Key, err = tokenswap.AddressFromBytes(b); err != nil {
				return err
			}
		case 2:
			if err := tokenswap.Expect(field, wire, tokenswap.WireVarint); err != nil {
				return err
			}
			flags, err := r.Varint()
			if err != nil {
				return err
			}
			if flags&^(flagSigner|flagWritable) != 0 {
				return errors.Wrapf(errors.ErrInvalidInput, "account flags %b", flags)
			}
			m.IsSigner = flags&flagSigner != 0
			m.IsWritable = flags&flagWritable != 0
		default:
			return errors.Wrapf(errors.ErrInvalidInput, "unknown account field %d", field)
		}
	}
	return nil
}
