package runtime

import (
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxEncoding(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	other := tokenswap.Address{7, 7, 7}
	tx := NewTx(
		tokenswap.Instruction{
			ProgramID: tokenswap.ProgramAddress("demo"),
			Accounts: []tokenswap.AccountMeta{
				tokenswap.Writable(key.Address(), true),
				tokenswap.ReadOnly(other, false),
			},
			Data: []byte{1, 2, 3},
		},
		tokenswap.Instruction{
			ProgramID: tokenswap.SystemProgramID,
			Accounts:  []tokenswap.AccountMeta{tokenswap.Writable(other, false)},
			Data:      []byte{9},
		},
	)
	require.NoError(t, tx.Sign(key, "test-chain", 3))

	raw, err := tx.Marshal()
	require.NoError(t, err)

	var got Tx
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, tx.Instructions, got.Instructions)
	require.Len(t, got.Signatures, 1)
	assert.Equal(t, key.Address(), got.Signatures[0].Pubkey)
	assert.Equal(t, int64(3), got.Signatures[0].Sequence)

	// Sign bytes do not depend on the signatures.
	a, err := tx.GetSignBytes()
	require.NoError(t, err)
	b, err := got.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	signers, err := sigs.VerifyTxSignatures(newMemStore(), &got, "test-chain")
	// Sequence 3 is not the first one of a fresh signer.
	assert.True(t, sigs.ErrInvalidSequence.Is(err))
	assert.Nil(t, signers)
}

func TestTxDecodingErrors(t *testing.T) {
	cases := map[string]struct {
		raw     []byte
		wantErr *errors.Error
	}{
		"unknown field": {
			raw:     []byte{0x1a, 0x01, 0x00},
			wantErr: errors.ErrInvalidInput,
		},
		"varint where message expected": {
			raw:     []byte{0x08, 0x01},
			wantErr: errors.ErrInvalidInput,
		},
		"truncated message": {
			raw:     []byte{0x0a, 0x05, 0x01},
			wantErr: errors.ErrInvalidInput,
		},
		"short program id": {
			raw:     []byte{0x0a, 0x03, 0x0a, 0x01, 0x01},
			wantErr: errors.ErrInvalidInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var tx Tx
			err := tx.Unmarshal(tc.raw)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestTxSignersAndValidate(t *testing.T) {
	a, b := tokenswap.Address{1}, tokenswap.Address{2}
	tx := NewTx(
		tokenswap.Instruction{Accounts: []tokenswap.AccountMeta{tokenswap.Writable(a, true), tokenswap.ReadOnly(b, false)}},
		tokenswap.Instruction{Accounts: []tokenswap.AccountMeta{tokenswap.ReadOnly(b, true), tokenswap.Writable(a, true)}},
	)
	assert.Equal(t, []tokenswap.Address{a, b}, tx.Signers())
	assert.NoError(t, tx.Validate())

	assert.True(t, errors.ErrEmpty.Is(NewTx().Validate()))

	big := NewTx(make([]tokenswap.Instruction, MaxInstructions+1)...)
	assert.True(t, errors.ErrInvalidInput.Is(big.Validate()))

	fat := NewTx(tokenswap.Instruction{Data: make([]byte, tokenswap.MaxInstructionData+1)})
	assert.True(t, errors.ErrInvalidInput.Is(fat.Validate()))
}
