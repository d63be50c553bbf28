package p256vault

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// ProgramID is the address of the P-256 vault program.
var ProgramID = tokenswap.ProgramAddress("p256vault")

// Instruction discriminators.
const (
	InstructionDeposit uint8 = iota
	InstructionWithdraw
)

const (
	// PubKeyLength is the size of a compressed P-256 public key.
	PubKeyLength = 33
	// SignatureLength is the size of an r || s signature.
	SignatureLength = 64

	vaultSeed = "vault"
)

var halfOrder = new(big.Int).Rsh(elliptic.P256().Params().N, 1)

// Address returns the vault of a compressed public key and its canonical
// bump.
func Address(pubkey []byte) (tokenswap.Address, uint8, error) {
	if len(pubkey) != PubKeyLength {
		return tokenswap.Address{}, 0, errors.Wrapf(errors.ErrInvalidInput, "public key is %d bytes", len(pubkey))
	}
	return tokenswap.FindProgramAddress(ProgramID, []byte(vaultSeed), pubkey[:1], pubkey[1:])
}

// CompressPublicKey returns the 33 byte form vaults are derived from.
func CompressPublicKey(pub *ecdsa.PublicKey) []byte {
	return elliptic.MarshalCompressed(elliptic.P256(), pub.X, pub.Y)
}

func parsePublicKey(pubkey []byte) (*ecdsa.PublicKey, error) {
	if len(pubkey) != PubKeyLength {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "public key is %d bytes", len(pubkey))
	}
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), pubkey)
	if x == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "not a compressed P-256 public key")
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

// Authorization allows Payer to empty a vault until Expiry (unix seconds).
type Authorization struct {
	Payer     tokenswap.Address
	Expiry    int64
	Signature []byte
}

// Message returns the signed bytes, payer || expiry.
func (a Authorization) Message() []byte {
	msg := make([]byte, 0, tokenswap.AddressLength+8)
	msg = append(msg, a.Payer[:]...)
	return append(msg, tokenswap.LE64(uint64(a.Expiry))...)
}

// Verify checks the signature against a compressed public key.
func (a Authorization) Verify(pubkey []byte) error {
	pub, err := parsePublicKey(pubkey)
	if err != nil {
		return err
	}
	if len(a.Signature) != SignatureLength {
		return errors.Wrapf(ErrSignature, "signature is %d bytes", len(a.Signature))
	}
	r := new(big.Int).SetBytes(a.Signature[:32])
	s := new(big.Int).SetBytes(a.Signature[32:])
	if s.Cmp(halfOrder) > 0 {
		return errors.Wrap(ErrSignature, "high s")
	}
	hash := sha256.Sum256(a.Message())
	if !ecdsa.Verify(pub, hash[:], r, s) {
		return errors.Wrap(ErrSignature, "verification failed")
	}
	return nil
}

// Sign returns an authorization for payer signed by key.
func Sign(key *ecdsa.PrivateKey, payer tokenswap.Address, expiry int64) (Authorization, error) {
	auth := Authorization{Payer: payer, Expiry: expiry}
	hash := sha256.Sum256(auth.Message())
	r, s, err := ecdsa.Sign(rand.Reader, key, hash[:])
	if err != nil {
		return auth, errors.Wrap(err, "p256 sign")
	}
	if s.Cmp(halfOrder) > 0 {
		s.Sub(elliptic.P256().Params().N, s)
	}
	sig := make([]byte, SignatureLength)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	auth.Signature = sig
	return auth, nil
}

func accounts(payer tokenswap.Address, pubkey []byte) ([]tokenswap.AccountMeta, error) {
	v, _, err := Address(pubkey)
	if err != nil {
		return nil, err
	}
	return []tokenswap.AccountMeta{
		tokenswap.Writable(payer, true),
		tokenswap.Writable(v, false),
		tokenswap.ReadOnly(tokenswap.SystemProgramID, false),
	}, nil
}

// Deposit returns an instruction moving amount lamports from payer into
// the vault of pubkey.
func Deposit(payer tokenswap.Address, pubkey []byte, amount uint64) (tokenswap.Instruction, error) {
	metas, err := accounts(payer, pubkey)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts:  metas,
		Data:      tokenswap.NewDataWriter(InstructionDeposit).Raw(pubkey).Uint64(amount).Bytes(),
	}, nil
}

// Withdraw returns an instruction emptying the vault of pubkey into payer.
func Withdraw(payer tokenswap.Address, pubkey []byte, auth Authorization) (tokenswap.Instruction, error) {
	metas, err := accounts(payer, pubkey)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts:  metas,
		Data: tokenswap.NewDataWriter(InstructionWithdraw).
			Raw(pubkey).
			Address(auth.Payer).
			Uint64(uint64(auth.Expiry)).
			Raw(auth.Signature).
			Bytes(),
	}, nil
}
