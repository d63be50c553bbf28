package token

import (
	"encoding/binary"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const (
	// MintLen is the size of a mint account.
	MintLen = 82
	// AccountLen is the size of a token account.
	AccountLen = 165
)

// AccountState is the lifecycle of a token account.
type AccountState uint8

const (
	StateUninitialized AccountState = iota
	StateInitialized
	StateFrozen
)

// Mint describes a token type.
type Mint struct {
	// MintAuthority can create new units. A mint without an authority
	// has a fixed supply.
	MintAuthority   *tokenswap.Address
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *tokenswap.Address
}

// UnpackMint decodes the mint layout:
//
//   0   36  mint authority (option)
//   36  8   supply
//   44  1   decimals
//   45  1   is initialized
//   46  36  freeze authority (option)
func UnpackMint(data []byte) (*Mint, error) {
	if len(data) != MintLen {
		return nil, errors.Wrapf(errors.ErrAccountData, "mint data is %d bytes", len(data))
	}
	m := &Mint{
		Supply:   binary.LittleEndian.Uint64(data[36:44]),
		Decimals: data[44],
	}
	var err error
	if m.MintAuthority, err = unpackAddressOption(data[0:36]); err != nil {
		return nil, err
	}
	switch data[45] {
	case 0:
	case 1:
		m.IsInitialized = true
	default:
		return nil, errors.Wrapf(errors.ErrAccountData, "is initialized flag %d", data[45])
	}
	if m.FreezeAuthority, err = unpackAddressOption(data[46:82]); err != nil {
		return nil, err
	}
	return m, nil
}

// Pack writes the mint into data, which must be MintLen bytes long.
func (m *Mint) Pack(data []byte) {
	packAddressOption(data[0:36], m.MintAuthority)
	binary.LittleEndian.PutUint64(data[36:44], m.Supply)
	data[44] = m.Decimals
	data[45] = boolByte(m.IsInitialized)
	packAddressOption(data[46:82], m.FreezeAuthority)
}

// Account is a balance of a single mint.
type Account struct {
	Mint            tokenswap.Address
	Owner           tokenswap.Address
	Amount          uint64
	Delegate        *tokenswap.Address
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *tokenswap.Address
}

// UnpackAccount decodes the token account layout:
//
//   0   32  mint
//   32  32  owner
//   64  8   amount
//   72  36  delegate (option)
//   108 1   state
//   109 12  is native (option of u64)
//   121 8   delegated amount
//   129 36  close authority (option)
func UnpackAccount(data []byte) (*Account, error) {
	if len(data) != AccountLen {
		return nil, errors.Wrapf(errors.ErrAccountData, "token account data is %d bytes", len(data))
	}
	a := &Account{
		Amount:          binary.LittleEndian.Uint64(data[64:72]),
		State:           AccountState(data[108]),
		DelegatedAmount: binary.LittleEndian.Uint64(data[121:129]),
	}
	copy(a.Mint[:], data[0:32])
	copy(a.Owner[:], data[32:64])
	if a.State > StateFrozen {
		return nil, errors.Wrapf(errors.ErrAccountData, "account state %d", a.State)
	}
	var err error
	if a.Delegate, err = unpackAddressOption(data[72:108]); err != nil {
		return nil, err
	}
	switch tag := binary.LittleEndian.Uint32(data[109:113]); tag {
	case 0:
	case 1:
		v := binary.LittleEndian.Uint64(data[113:121])
		a.IsNative = &v
	default:
		return nil, errors.Wrapf(errors.ErrAccountData, "option tag %d", tag)
	}
	if a.CloseAuthority, err = unpackAddressOption(data[129:165]); err != nil {
		return nil, err
	}
	return a, nil
}

// Pack writes the account into data, which must be AccountLen bytes long.
func (a *Account) Pack(data []byte) {
	copy(data[0:32], a.Mint[:])
	copy(data[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(data[64:72], a.Amount)
	packAddressOption(data[72:108], a.Delegate)
	data[108] = byte(a.State)
	if a.IsNative != nil {
		binary.LittleEndian.PutUint32(data[109:113], 1)
		binary.LittleEndian.PutUint64(data[113:121], *a.IsNative)
	} else {
		for i := 109; i < 121; i++ {
			data[i] = 0
		}
	}
	binary.LittleEndian.PutUint64(data[121:129], a.DelegatedAmount)
	packAddressOption(data[129:165], a.CloseAuthority)
}

// IsInitialized returns false for an account that was allocated but never
// initialized.
func (a *Account) IsInitialized() bool {
	return a.State != StateUninitialized
}

func unpackAddressOption(raw []byte) (*tokenswap.Address, error) {
	switch tag := binary.LittleEndian.Uint32(raw[:4]); tag {
	case 0:
		return nil, nil
	case 1:
		var a tokenswap.Address
		copy(a[:], raw[4:36])
		return &a, nil
	default:
		return nil, errors.Wrapf(errors.ErrAccountData, "option tag %d", tag)
	}
}

func packAddressOption(dst []byte, a *tokenswap.Address) {
	if a == nil {
		for i := range dst[:36] {
			dst[i] = 0
		}
		return
	}
	binary.LittleEndian.PutUint32(dst[:4], 1)
	copy(dst[4:36], a[:])
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// LoadMint decodes an initialized mint held by an account owned by the
// token program.
func LoadMint(acc *tokenswap.AccountInfo) (*Mint, error) {
	if !acc.IsOwnedBy(ProgramID) {
		return nil, errors.Wrapf(errors.ErrProgram, "mint %s not owned by the token program", acc.Key)
	}
	m, err := UnpackMint(acc.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "mint %s", acc.Key)
	}
	if !m.IsInitialized {
		return nil, errors.Wrapf(ErrUninitialized, "mint %s", acc.Key)
	}
	return m, nil
}

// LoadAccount decodes an initialized token account owned by the token
// program.
func LoadAccount(acc *tokenswap.AccountInfo) (*Account, error) {
	if !acc.IsOwnedBy(ProgramID) {
		return nil, errors.Wrapf(errors.ErrProgram, "token account %s not owned by the token program", acc.Key)
	}
	a, err := UnpackAccount(acc.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "token account %s", acc.Key)
	}
	if !a.IsInitialized() {
		return nil, errors.Wrapf(ErrUninitialized, "token account %s", acc.Key)
	}
	return a, nil
}

// Balance returns the token amount held by a ledger account. It fails for
// accounts that are not initialized token accounts.
func Balance(acc *tokenswap.Account) (uint64, error) {
	a, err := LoadAccount(&tokenswap.AccountInfo{Account: acc})
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}
