package escrow

import (
	"context"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
)

// openVault creates the token account keeping the deposit of a record. The
// token account owner is the record address, so only this program can move
// the deposit out.
func openVault(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo,
	maker, vault, mint tokenswap.Address, record tokenswap.Address, vaultBump uint8) error {

	seeds := [][]byte{[]byte(vaultSeed), mint[:], record[:], {vaultBump}}
	create := system.CreateAccount(maker, vault, info.Rent().MinimumBalance(token.AccountLen), token.AccountLen, token.ProgramID)
	if err := inv.Invoke(ctx, create, accounts, seeds); err != nil {
		return errors.Wrap(err, "create vault")
	}
	if err := inv.Invoke(ctx, token.InitializeAccount(vault, mint, record), accounts); err != nil {
		return errors.Wrap(err, "initialize vault")
	}
	return nil
}

// loadVault checks that the account is the vault of the record and returns
// its token state.
func loadVault(vault *tokenswap.AccountInfo, record tokenswap.Address, rec *Record) (*token.Account, error) {
	want, _, err := VaultAddress(rec.MintDeposit, record)
	if err != nil {
		return nil, err
	}
	if vault.Key != want {
		return nil, errors.Wrapf(ErrAccountMismatch, "vault is %s, got %s", want, vault.Key)
	}
	if vault.IsEmpty() {
		return nil, errors.Wrapf(ErrRecordNotFound, "vault %s does not exist", vault.Key)
	}
	v, err := token.LoadAccount(vault)
	if err != nil {
		return nil, errors.Wrap(ErrAccountMismatch, err.Error())
	}
	if v.Owner != record || v.Mint != rec.MintDeposit {
		return nil, errors.Wrapf(ErrAccountMismatch, "vault %s is not controlled by the record", vault.Key)
	}
	return v, nil
}

// drainVault sends the whole vault balance to dest and closes the vault,
// returning its storage deposit to the maker. The record signs both.
func drainVault(ctx context.Context, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo,
	rec *Record, record, vault, dest tokenswap.Address, balance uint64, decimals uint8) error {

	seeds := rec.signerSeeds()
	move := token.TransferChecked(vault, rec.MintDeposit, dest, record, balance, decimals)
	if err := inv.Invoke(ctx, move, accounts, seeds); err != nil {
		return errors.Wrap(err, "empty vault")
	}
	if err := inv.Invoke(ctx, token.CloseAccount(vault, rec.Maker, record), accounts, seeds); err != nil {
		return errors.Wrap(err, "close vault")
	}
	return nil
}
