package escrow

import (
	"encoding/binary"
	"fmt"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// ProgramID is the address of the escrow program.
var ProgramID = tokenswap.ProgramAddress("escrow")

// Record layout. All integers are little endian.
const (
	OffsetTag           = 0
	OffsetSeed          = 1
	OffsetMaker         = 9
	OffsetMintDeposit   = 41
	OffsetMintReceive   = 73
	OffsetReceiveAmount = 105
	OffsetBump          = 113

	// RecordLen is the size of the record account data.
	RecordLen = 114

	recordTag = 1
)

const (
	recordSeed = "escrow"
	vaultSeed  = "vault"
)

// Record holds the terms of an open swap.
type Record struct {
	Seed          uint64            `json:"seed"`
	Maker         tokenswap.Address `json:"maker"`
	MintDeposit   tokenswap.Address `json:"mint_deposit"`
	MintReceive   tokenswap.Address `json:"mint_receive"`
	ReceiveAmount uint64            `json:"receive_amount"`
	// Bump is the canonical bump of the record address.
	Bump uint8 `json:"bump"`
}

// Validate checks the invariants of the terms.
func (r *Record) Validate() error {
	if r.ReceiveAmount == 0 {
		return errors.Wrap(ErrInvalidAmount, "receive")
	}
	if r.MintDeposit == r.MintReceive {
		return errors.Wrap(ErrIdenticalMints, r.MintDeposit.String())
	}
	return nil
}

// UnpackRecord decodes the record account data.
func UnpackRecord(data []byte) (*Record, error) {
	if len(data) != RecordLen {
		return nil, errors.Wrapf(errors.ErrAccountData, "record is %d bytes", len(data))
	}
	if data[OffsetTag] != recordTag {
		return nil, errors.Wrapf(errors.ErrAccountData, "record tag %d", data[OffsetTag])
	}
	r := &Record{
		Seed:          binary.LittleEndian.Uint64(data[OffsetSeed:]),
		ReceiveAmount: binary.LittleEndian.Uint64(data[OffsetReceiveAmount:]),
		Bump:          data[OffsetBump],
	}
	copy(r.Maker[:], data[OffsetMaker:OffsetMintDeposit])
	copy(r.MintDeposit[:], data[OffsetMintDeposit:OffsetMintReceive])
	copy(r.MintReceive[:], data[OffsetMintReceive:OffsetReceiveAmount])
	return r, nil
}

// Pack writes the record into data, which must be RecordLen bytes long.
func (r *Record) Pack(data []byte) {
	data[OffsetTag] = recordTag
	binary.LittleEndian.PutUint64(data[OffsetSeed:], r.Seed)
	copy(data[OffsetMaker:], r.Maker[:])
	copy(data[OffsetMintDeposit:], r.MintDeposit[:])
	copy(data[OffsetMintReceive:], r.MintReceive[:])
	binary.LittleEndian.PutUint64(data[OffsetReceiveAmount:], r.ReceiveAmount)
	data[OffsetBump] = r.Bump
}

// signerSeeds returns the seeds the program signs for the record with.
func (r *Record) signerSeeds() [][]byte {
	return [][]byte{[]byte(recordSeed), r.Maker[:], tokenswap.LE64(r.Seed), {r.Bump}}
}

// Address re-derives the record address from the stored terms.
func (r *Record) Address() (tokenswap.Address, error) {
	return tokenswap.CreateProgramAddress(ProgramID, r.signerSeeds()...)
}

// RecordAddress returns the address of the record a maker opens with
// given seed, together with its canonical bump.
func RecordAddress(maker tokenswap.Address, seed uint64) (tokenswap.Address, uint8, error) {
	return tokenswap.FindProgramAddress(ProgramID, []byte(recordSeed), maker[:], tokenswap.LE64(seed))
}

// VaultAddress returns the address of the token account that keeps the
// deposit of a record.
func VaultAddress(mintDeposit, record tokenswap.Address) (tokenswap.Address, uint8, error) {
	return tokenswap.FindProgramAddress(ProgramID, []byte(vaultSeed), mintDeposit[:], record[:])
}

// Lifecycle is the state of a record address.
type Lifecycle uint8

const (
	// Closed records were settled or refunded, or never existed. The
	// ledger holds nothing under their address.
	Closed Lifecycle = iota
	// Active records hold a deposit waiting for a taker.
	Active
)

func (l Lifecycle) String() string {
	switch l {
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("Lifecycle(%d)", uint8(l))
	}
}

// LifecycleOf returns the state of the account under a record address.
func LifecycleOf(acc *tokenswap.Account) Lifecycle {
	if acc.IsOwnedBy(ProgramID) && len(acc.Data) == RecordLen && acc.Data[OffsetTag] == recordTag {
		return Active
	}
	return Closed
}
