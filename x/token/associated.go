package token

import (
	"context"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/system"
)

// Associated token instruction discriminators.
const (
	InstructionCreate uint8 = iota
	InstructionCreateIdempotent
)

// AssociatedAddress returns the canonical token account of wallet for
// given mint.
func AssociatedAddress(wallet, mint tokenswap.Address) (tokenswap.Address, uint8, error) {
	return tokenswap.FindProgramAddress(AssociatedProgramID, wallet[:], ProgramID[:], mint[:])
}

// MustAssociatedAddress is like AssociatedAddress but panics on error.
func MustAssociatedAddress(wallet, mint tokenswap.Address) tokenswap.Address {
	a, _, err := AssociatedAddress(wallet, mint)
	if err != nil {
		panic(err)
	}
	return a
}

// CreateAssociated returns an instruction that creates the associated token
// account of wallet, paid by funder. With idempotent set, an already
// existing account is not an error.
func CreateAssociated(funder, wallet, mint tokenswap.Address, idempotent bool) tokenswap.Instruction {
	disc := InstructionCreate
	if idempotent {
		disc = InstructionCreateIdempotent
	}
	return tokenswap.Instruction{
		ProgramID: AssociatedProgramID,
		Accounts:  AssociatedAccounts(funder, wallet, mint),
		Data:      []byte{disc},
	}
}

// AssociatedAccounts returns the account list of an associated token
// account creation.
func AssociatedAccounts(funder, wallet, mint tokenswap.Address) []tokenswap.AccountMeta {
	return []tokenswap.AccountMeta{
		tokenswap.Writable(funder, true),
		tokenswap.Writable(MustAssociatedAddress(wallet, mint), false),
		tokenswap.ReadOnly(wallet, false),
		tokenswap.ReadOnly(mint, false),
		tokenswap.ReadOnly(tokenswap.SystemProgramID, false),
		tokenswap.ReadOnly(ProgramID, false),
	}
}

// AssociatedProgram creates associated token accounts.
type AssociatedProgram struct{}

var _ tokenswap.Program = AssociatedProgram{}

func (AssociatedProgram) ID() tokenswap.Address {
	return AssociatedProgramID
}

func (AssociatedProgram) Name() string {
	return "associated_token"
}

// Process expects accounts
// [funder (s, w), associated (w), wallet, mint, system program, token program].
func (p AssociatedProgram) Process(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	var idempotent bool
	switch {
	case len(data) == 0 || (len(data) == 1 && data[0] == InstructionCreate):
	case len(data) == 1 && data[0] == InstructionCreateIdempotent:
		idempotent = true
	default:
		return errors.Wrap(errors.ErrInvalidMsg, "unknown associated token instruction")
	}
	if err := tokenswap.RequireAccounts(accounts, 6); err != nil {
		return err
	}
	funder, ata, wallet, mint, sysProgram, tokenProgram := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]
	if sysProgram.Key != tokenswap.SystemProgramID || tokenProgram.Key != ProgramID {
		return errors.Wrap(errors.ErrProgram, "system and token programs expected")
	}

	want, bump, err := AssociatedAddress(wallet.Key, mint.Key)
	if err != nil {
		return err
	}
	if ata.Key != want {
		return errors.Wrapf(errors.ErrInvalidInput, "associated account of %s for %s is %s, got %s", wallet.Key, mint.Key, want, ata.Key)
	}

	if !ata.IsEmpty() {
		if !idempotent {
			return errors.Wrapf(errors.ErrAccountInUse, "%s", ata.Key)
		}
		a, err := LoadAccount(ata)
		if err != nil {
			return errors.Wrap(errors.ErrAccountInUse, err.Error())
		}
		if a.Owner != wallet.Key || a.Mint != mint.Key {
			return errors.Wrapf(errors.ErrAccountInUse, "%s is not the token account of %s", ata.Key, wallet.Key)
		}
		return nil
	}
	if _, err := LoadMint(mint); err != nil {
		return err
	}

	seeds := [][]byte{wallet.Key[:], ProgramID[:], mint.Key[:], {bump}}
	create := system.CreateAccount(funder.Key, ata.Key, info.Rent().MinimumBalance(AccountLen), AccountLen, ProgramID)
	if err := inv.Invoke(ctx, create, accounts, seeds); err != nil {
		return errors.Wrap(err, "create associated account")
	}
	if err := inv.Invoke(ctx, InitializeAccount(ata.Key, mint.Key, wallet.Key), accounts); err != nil {
		return errors.Wrap(err, "initialize associated account")
	}
	info.Logger().Debug("associated account created", "account", ata.Key, "wallet", wallet.Key, "mint", mint.Key)
	return nil
}
