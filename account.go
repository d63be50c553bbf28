package tokenswap

import (
	"bytes"

	"github.com/iov-one/tokenswap/errors"
)

// Account is the state kept by the ledger under an address. An account
// exists for as long as it holds lamports.
type Account struct {
	Lamports uint64
	// Owner is the program that is allowed to modify Data and to debit
	// Lamports.
	Owner Address
	Data  []byte
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	return &Account{
		Lamports: a.Lamports,
		Owner:    a.Owner,
		Data:     append([]byte(nil), a.Data...),
	}
}

// Equals returns true if both accounts hold the same state.
func (a *Account) Equals(b *Account) bool {
	return a.Lamports == b.Lamports && a.Owner == b.Owner && bytes.Equal(a.Data, b.Data)
}

// IsEmpty returns true for an account that was never created or was closed.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

// IsOwnedBy returns true if given program owns this account.
func (a *Account) IsOwnedBy(program Address) bool {
	return a.Owner == program
}

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Key        Address
	IsSigner   bool
	IsWritable bool
}

// Writable returns a meta of an account an instruction modifies.
func Writable(key Address, signer bool) AccountMeta {
	return AccountMeta{Key: key, IsSigner: signer, IsWritable: true}
}

// ReadOnly returns a meta of an account an instruction only reads.
func ReadOnly(key Address, signer bool) AccountMeta {
	return AccountMeta{Key: key, IsSigner: signer}
}

// AccountInfo is the view of an account given to a program. The embedded
// Account is shared by all invocations of a transaction, while signer and
// writable flags are set per invocation.
type AccountInfo struct {
	Key        Address
	IsSigner   bool
	IsWritable bool
	*Account
}

// Meta returns the meta describing this account info.
func (a *AccountInfo) Meta() AccountMeta {
	return AccountMeta{Key: a.Key, IsSigner: a.IsSigner, IsWritable: a.IsWritable}
}

// Close moves all lamports of the account to dest, wipes the data and
// returns the account to the system program. The ledger removes it when
// the transaction commits.
func (a *AccountInfo) Close(dest *AccountInfo) error {
	if a.Key == dest.Key {
		return errors.Wrap(errors.ErrInvalidInput, "cannot close an account into itself")
	}
	sum := dest.Lamports + a.Lamports
	if sum < dest.Lamports {
		return errors.Wrap(errors.ErrOverflow, "lamports")
	}
	dest.Lamports = sum
	a.Lamports = 0
	a.Data = nil
	a.Owner = SystemProgramID
	return nil
}

// Debit moves lamports from this account to dest.
func (a *AccountInfo) Debit(dest *AccountInfo, lamports uint64) error {
	if a.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientAmount, "account %s holds %d lamports, need %d", a.Key, a.Lamports, lamports)
	}
	sum := dest.Lamports + lamports
	if sum < dest.Lamports {
		return errors.Wrap(errors.ErrOverflow, "lamports")
	}
	a.Lamports -= lamports
	dest.Lamports = sum
	return nil
}

// RequireSigner returns an error if the account did not sign.
func (a *AccountInfo) RequireSigner() error {
	if !a.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "%s must sign", a.Key)
	}
	return nil
}

// RequireWritable returns an error if the account is read only in the
// current invocation.
func (a *AccountInfo) RequireWritable() error {
	if !a.IsWritable {
		return errors.Wrapf(errors.ErrPrivilege, "%s is read only", a.Key)
	}
	return nil
}
