package tokenswap

import (
	"testing"

	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/weavetest/assert"
)

func TestAccountInfoClose(t *testing.T) {
	owner := ProgramAddress("escrow")
	src := &AccountInfo{
		Key:     NewAddress([]byte("src")),
		Account: &Account{Lamports: 100, Owner: owner, Data: []byte{1, 2, 3}},
	}
	dst := &AccountInfo{
		Key:     NewAddress([]byte("dst")),
		Account: &Account{Lamports: 5},
	}

	assert.Nil(t, src.Close(dst))
	assert.Equal(t, uint64(105), dst.Lamports)
	assert.Equal(t, uint64(0), src.Lamports)
	assert.Equal(t, SystemProgramID, src.Owner)
	if !src.IsEmpty() {
		t.Fatal("closed account must be empty")
	}

	assert.IsErr(t, errors.ErrInvalidInput, dst.Close(dst))
}

func TestAccountInfoDebit(t *testing.T) {
	src := &AccountInfo{Key: NewAddress([]byte("a")), Account: &Account{Lamports: 10}}
	dst := &AccountInfo{Key: NewAddress([]byte("b")), Account: &Account{}}

	assert.Nil(t, src.Debit(dst, 4))
	assert.Equal(t, uint64(6), src.Lamports)
	assert.Equal(t, uint64(4), dst.Lamports)

	assert.IsErr(t, errors.ErrInsufficientAmount, src.Debit(dst, 7))
	assert.Equal(t, uint64(6), src.Lamports)

	dst.Lamports = ^uint64(0)
	assert.IsErr(t, errors.ErrOverflow, src.Debit(dst, 1))
}

func TestAccountClone(t *testing.T) {
	a := &Account{Lamports: 1, Owner: ProgramAddress("token"), Data: []byte{1}}
	b := a.Clone()
	if !a.Equals(b) {
		t.Fatal("clone must be equal")
	}
	b.Data[0] = 9
	if a.Equals(b) {
		t.Fatal("clone must not share data")
	}
}

func TestRentMinimumBalance(t *testing.T) {
	assert.Equal(t, uint64(128*3480*2), DefaultRent.MinimumBalance(0))
	assert.Equal(t, uint64((128+165)*3480*2), DefaultRent.MinimumBalance(165))
	if DefaultRent.IsExempt(DefaultRent.MinimumBalance(10)-1, 10) {
		t.Fatal("balance below the minimum is not exempt")
	}
}

func TestDataReader(t *testing.T) {
	data := NewDataWriter(7).Uint64(42).Uint64(1 << 40).Address(ProgramAddress("x")).Bytes()
	assert.Equal(t, 1+8+8+AddressLength, len(data))

	r := NewDataReader(data)
	assert.Equal(t, uint8(7), r.Uint8())
	assert.Equal(t, uint64(42), r.Uint64())
	assert.Equal(t, uint64(1<<40), r.Uint64())
	assert.Equal(t, ProgramAddress("x"), r.Address())
	assert.Nil(t, r.Err())

	short := NewDataReader([]byte{1, 2})
	short.Uint64()
	assert.IsErr(t, errors.ErrInvalidInput, short.Err())

	trailing := NewDataReader([]byte{1, 2})
	trailing.Uint8()
	assert.IsErr(t, errors.ErrInvalidInput, trailing.Err())

	raw := NewDataWriter(1).Raw([]byte{0xaa, 0xbb, 0xcc}).Bytes()
	fixed := NewDataReader(raw)
	fixed.Uint8()
	assert.Equal(t, []byte{0xaa, 0xbb}, fixed.Fixed(2))
	assert.Equal(t, []byte(nil), fixed.Fixed(2))
	assert.IsErr(t, errors.ErrInvalidInput, fixed.Err())
}

func TestRequireAccounts(t *testing.T) {
	accounts := []*AccountInfo{{}, {}}
	assert.Nil(t, RequireAccounts(accounts, 2))
	assert.IsErr(t, errors.ErrNotEnoughAccounts, RequireAccounts(accounts, 3))
}
