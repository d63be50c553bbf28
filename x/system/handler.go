package system

import (
	"context"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Program is the system program.
type Program struct{}

var _ tokenswap.Program = Program{}

// ID returns the all zero address.
func (Program) ID() tokenswap.Address {
	return tokenswap.SystemProgramID
}

func (Program) Name() string {
	return "system"
}

// Process dispatches an instruction by its first byte.
func (p Program) Process(ctx context.Context, info tokenswap.BlockInfo, _ tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "empty instruction data")
	}
	r := tokenswap.NewDataReader(data[1:])
	switch data[0] {
	case InstructionCreateAccount:
		lamports, space, owner := r.Uint64(), r.Uint64(), r.Address()
		if err := r.Err(); err != nil {
			return err
		}
		return p.createAccount(info, accounts, lamports, space, owner)
	case InstructionAssign:
		owner := r.Address()
		if err := r.Err(); err != nil {
			return err
		}
		return p.assign(info, accounts, owner)
	case InstructionTransfer:
		lamports := r.Uint64()
		if err := r.Err(); err != nil {
			return err
		}
		return p.transfer(info, accounts, lamports)
	default:
		return errors.Wrapf(errors.ErrInvalidMsg, "unknown system instruction %d", data[0])
	}
}

func (Program) createAccount(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo, lamports, space uint64, owner tokenswap.Address) error {
	if err := tokenswap.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	funder, acc := accounts[0], accounts[1]
	if err := requireSystemWallet(funder); err != nil {
		return err
	}
	if err := acc.RequireSigner(); err != nil {
		return errors.Wrap(err, "new account")
	}
	if err := acc.RequireWritable(); err != nil {
		return err
	}
	if acc.Lamports != 0 || len(acc.Data) != 0 || !acc.IsOwnedBy(tokenswap.SystemProgramID) {
		return errors.Wrapf(errors.ErrAccountInUse, "%s", acc.Key)
	}
	if space > MaxAccountData {
		return errors.Wrapf(errors.ErrInvalidInput, "space %d exceeds %d", space, MaxAccountData)
	}
	if err := funder.Debit(acc, lamports); err != nil {
		return err
	}
	acc.Data = make([]byte, space)
	acc.Owner = owner
	info.Logger().Debug("account created", "key", acc.Key, "owner", owner, "space", space, "lamports", lamports)
	return nil
}

func (Program) assign(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo, owner tokenswap.Address) error {
	if err := tokenswap.RequireAccounts(accounts, 1); err != nil {
		return err
	}
	acc := accounts[0]
	if err := acc.RequireSigner(); err != nil {
		return err
	}
	if !acc.IsOwnedBy(tokenswap.SystemProgramID) {
		return errors.Wrapf(ErrNotSystemOwned, "%s", acc.Key)
	}
	acc.Owner = owner
	info.Logger().Debug("account assigned", "key", acc.Key, "owner", owner)
	return nil
}

func (Program) transfer(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo, lamports uint64) error {
	if err := tokenswap.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	from, to := accounts[0], accounts[1]
	if err := requireSystemWallet(from); err != nil {
		return err
	}
	if err := to.RequireWritable(); err != nil {
		return err
	}
	if err := from.Debit(to, lamports); err != nil {
		return err
	}
	info.Logger().Debug("lamports transferred", "from", from.Key, "to", to.Key, "lamports", lamports)
	return nil
}

// requireSystemWallet checks that lamports can be taken from the account:
// it signed, is writable and is a plain system account without data.
func requireSystemWallet(acc *tokenswap.AccountInfo) error {
	if err := acc.RequireSigner(); err != nil {
		return err
	}
	if err := acc.RequireWritable(); err != nil {
		return err
	}
	if !acc.IsOwnedBy(tokenswap.SystemProgramID) {
		return errors.Wrapf(ErrNotSystemOwned, "%s", acc.Key)
	}
	if len(acc.Data) != 0 {
		return errors.Wrapf(errors.ErrAccountData, "%s carries data", acc.Key)
	}
	return nil
}
