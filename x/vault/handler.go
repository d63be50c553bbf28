package vault

import (
	"context"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/system"
)

// Program is the vault program.
type Program struct{}

var _ tokenswap.Program = Program{}

func (Program) ID() tokenswap.Address {
	return ProgramID
}

func (Program) Name() string {
	return "vault"
}

// Process expects accounts [owner (s, w), vault (w), system program].
func (p Program) Process(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "empty instruction data")
	}
	if err := tokenswap.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	owner, v := accounts[0], accounts[1]
	if err := owner.RequireSigner(); err != nil {
		return err
	}
	if accounts[2].Key != tokenswap.SystemProgramID {
		return errors.Wrap(errors.ErrProgram, "system program expected")
	}
	if !v.IsOwnedBy(tokenswap.SystemProgramID) {
		return errors.Wrapf(errors.ErrProgram, "vault %s not owned by the system program", v.Key)
	}
	want, bump, err := Address(owner.Key)
	if err != nil {
		return err
	}
	if v.Key != want {
		return errors.Wrapf(errors.ErrInvalidInput, "vault of %s is %s, got %s", owner.Key, want, v.Key)
	}

	r := tokenswap.NewDataReader(data[1:])
	switch data[0] {
	case InstructionDeposit:
		amount := r.Uint64()
		if err := r.Err(); err != nil {
			return err
		}
		if amount == 0 {
			return errors.Wrap(errors.ErrInvalidAmount, "zero deposit")
		}
		if v.Lamports != 0 {
			return errors.Wrapf(ErrVaultInUse, "%s", v.Key)
		}
		if err := inv.Invoke(ctx, system.Transfer(owner.Key, v.Key, amount), accounts); err != nil {
			return err
		}
		info.Logger().Info("vault deposit", "owner", owner.Key, "lamports", amount)
		return nil
	case InstructionWithdraw:
		if err := r.Err(); err != nil {
			return err
		}
		if v.Lamports == 0 {
			return errors.Wrapf(ErrVaultEmpty, "%s", v.Key)
		}
		amount := v.Lamports
		seeds := [][]byte{[]byte(vaultSeed), owner.Key[:], {bump}}
		if err := inv.Invoke(ctx, system.Transfer(v.Key, owner.Key, amount), accounts, seeds); err != nil {
			return err
		}
		info.Logger().Info("vault withdraw", "owner", owner.Key, "lamports", amount)
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown vault instruction %d", data[0])
	}
}
