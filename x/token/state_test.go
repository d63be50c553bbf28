package token

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintLayout(t *testing.T) {
	authority := tokenswap.Address{1, 2, 3}
	m := &Mint{MintAuthority: &authority, Supply: 1 << 40, Decimals: 6, IsInitialized: true}
	data := make([]byte, MintLen)
	m.Pack(data)

	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, authority[:], data[4:36])
	assert.Equal(t, uint64(1<<40), binary.LittleEndian.Uint64(data[36:44]))
	assert.Equal(t, byte(6), data[44])
	assert.Equal(t, byte(1), data[45])
	assert.Equal(t, make([]byte, 36), data[46:82])

	got, err := UnpackMint(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = UnpackMint(data[:MintLen-1])
	assert.True(t, errors.ErrAccountData.Is(err))

	data[45] = 7
	_, err = UnpackMint(data)
	assert.True(t, errors.ErrAccountData.Is(err))
}

func TestAccountLayout(t *testing.T) {
	closer := tokenswap.Address{9}
	a := &Account{
		Mint:           tokenswap.Address{1},
		Owner:          tokenswap.Address{2},
		Amount:         500,
		State:          StateInitialized,
		CloseAuthority: &closer,
	}
	data := make([]byte, AccountLen)
	a.Pack(data)

	assert.Equal(t, byte(1), data[0])
	assert.Equal(t, byte(2), data[32])
	assert.Equal(t, uint64(500), binary.LittleEndian.Uint64(data[64:72]))
	assert.Equal(t, byte(StateInitialized), data[108])
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[129:133]))
	assert.Equal(t, byte(9), data[133])

	got, err := UnpackAccount(data)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.True(t, got.IsInitialized())

	// A freshly allocated account is all zeros and not initialized.
	empty, err := UnpackAccount(make([]byte, AccountLen))
	require.NoError(t, err)
	assert.False(t, empty.IsInitialized())

	data[108] = 3
	_, err = UnpackAccount(data)
	assert.True(t, errors.ErrAccountData.Is(err))
}

func TestLoadAccount(t *testing.T) {
	data := make([]byte, AccountLen)
	(&Account{Mint: tokenswap.Address{1}, Amount: 5, State: StateInitialized}).Pack(data)

	amount, err := Balance(&tokenswap.Account{Owner: ProgramID, Data: data})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), amount)

	_, err = Balance(&tokenswap.Account{Owner: tokenswap.SystemProgramID, Data: data})
	assert.True(t, errors.ErrProgram.Is(err))

	_, err = Balance(&tokenswap.Account{Owner: ProgramID, Data: make([]byte, AccountLen)})
	assert.True(t, ErrUninitialized.Is(err))
}
