package sigs

import (
	"encoding/binary"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// UserData keeps the replay protection counter of a single signer.
type UserData struct {
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Marshal() ([]byte, error) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(u.Sequence))
	return raw, nil
}

func (u *UserData) Unmarshal(raw []byte) error {
	if len(raw) != 8 {
		return errors.Wrapf(errors.ErrInvalidModel, "user data is %d bytes", len(raw))
	}
	u.Sequence = int64(binary.BigEndian.Uint64(raw))
	return nil
}

func (u *UserData) Validate() error {
	if u.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}

	next := u.Sequence + 1

	// The greatest nonce a javascript client can represent is
	//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket stores UserData under the signer address.
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, func() orm.Model { return &UserData{} }),
	}
}

// GetOrCreate loads the data of given signer. A signer that was never seen
// starts at sequence zero.
func (b Bucket) GetOrCreate(db tokenswap.ReadOnlyKVStore, signer tokenswap.Address) (*UserData, error) {
	var u UserData
	switch err := b.One(db, signer[:], &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{}, nil
	default:
		return nil, err
	}
}

// Save stores the signer data.
func (b Bucket) Save(db tokenswap.KVStore, signer tokenswap.Address, u *UserData) error {
	return b.Put(db, signer[:], u)
}
