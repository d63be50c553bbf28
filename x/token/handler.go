package token

import (
	"context"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Program is the token program.
type Program struct{}

var _ tokenswap.Program = Program{}

func (Program) ID() tokenswap.Address {
	return ProgramID
}

func (Program) Name() string {
	return "token"
}

// Process dispatches an instruction by its first byte.
func (p Program) Process(ctx context.Context, info tokenswap.BlockInfo, _ tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "empty instruction data")
	}
	r := tokenswap.NewDataReader(data[1:])
	switch data[0] {
	case InstructionInitializeMint:
		decimals, authority := r.Uint8(), r.Address()
		var freeze *tokenswap.Address
		if r.Uint8() == 1 {
			f := r.Address()
			freeze = &f
		}
		if err := r.Err(); err != nil {
			return err
		}
		return p.initializeMint(info, accounts, decimals, authority, freeze)
	case InstructionInitializeAccount:
		owner := r.Address()
		if err := r.Err(); err != nil {
			return err
		}
		return p.initializeAccount(info, accounts, owner)
	case InstructionMintTo:
		amount := r.Uint64()
		if err := r.Err(); err != nil {
			return err
		}
		return p.mintTo(info, accounts, amount)
	case InstructionTransferChecked:
		amount, decimals := r.Uint64(), r.Uint8()
		if err := r.Err(); err != nil {
			return err
		}
		return p.transferChecked(info, accounts, amount, decimals)
	case InstructionCloseAccount:
		if err := r.Err(); err != nil {
			return err
		}
		return p.closeAccount(info, accounts)
	default:
		return errors.Wrapf(errors.ErrInvalidMsg, "unknown token instruction %d", data[0])
	}
}

func (Program) initializeMint(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo, decimals uint8, authority tokenswap.Address, freeze *tokenswap.Address) error {
	if err := tokenswap.RequireAccounts(accounts, 1); err != nil {
		return err
	}
	acc := accounts[0]
	if err := requireAllocated(info, acc, MintLen); err != nil {
		return err
	}
	m, err := UnpackMint(acc.Data)
	if err != nil {
		return err
	}
	if m.IsInitialized {
		return errors.Wrapf(ErrAlreadyInitialized, "mint %s", acc.Key)
	}
	m = &Mint{
		MintAuthority:   &authority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freeze,
	}
	m.Pack(acc.Data)
	info.Logger().Debug("mint initialized", "mint", acc.Key, "decimals", decimals)
	return nil
}

func (Program) initializeAccount(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo, owner tokenswap.Address) error {
	if err := tokenswap.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	acc, mintAcc := accounts[0], accounts[1]
	if err := requireAllocated(info, acc, AccountLen); err != nil {
		return err
	}
	a, err := UnpackAccount(acc.Data)
	if err != nil {
		return err
	}
	if a.IsInitialized() {
		return errors.Wrapf(ErrAlreadyInitialized, "token account %s", acc.Key)
	}
	if _, err := LoadMint(mintAcc); err != nil {
		return err
	}
	a = &Account{
		Mint:  mintAcc.Key,
		Owner: owner,
		State: StateInitialized,
	}
	a.Pack(acc.Data)
	info.Logger().Debug("token account initialized", "account", acc.Key, "mint", mintAcc.Key, "owner", owner)
	return nil
}

func (Program) mintTo(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo, amount uint64) error {
	if err := tokenswap.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	mintAcc, destAcc, authority := accounts[0], accounts[1], accounts[2]
	if err := mintAcc.RequireWritable(); err != nil {
		return err
	}
	if err := destAcc.RequireWritable(); err != nil {
		return err
	}
	m, err := LoadMint(mintAcc)
	if err != nil {
		return err
	}
	dest, err := LoadAccount(destAcc)
	if err != nil {
		return err
	}
	if dest.Mint != mintAcc.Key {
		return errors.Wrapf(ErrMintMismatch, "%s holds %s", destAcc.Key, dest.Mint)
	}
	if dest.State == StateFrozen {
		return errors.Wrapf(ErrFrozen, "%s", destAcc.Key)
	}
	if m.MintAuthority == nil {
		return errors.Wrapf(ErrNoMintAuthority, "%s", mintAcc.Key)
	}
	if err := requireAuthority(authority, *m.MintAuthority); err != nil {
		return err
	}

	supply := m.Supply + amount
	if supply < m.Supply {
		return errors.Wrap(errors.ErrOverflow, "supply")
	}
	balance := dest.Amount + amount
	if balance < dest.Amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	m.Supply = supply
	dest.Amount = balance
	m.Pack(mintAcc.Data)
	dest.Pack(destAcc.Data)
	info.Logger().Debug("tokens minted", "mint", mintAcc.Key, "dest", destAcc.Key, "amount", amount)
	return nil
}

func (Program) transferChecked(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo, amount uint64, decimals uint8) error {
	if err := tokenswap.RequireAccounts(accounts, 4); err != nil {
		return err
	}
	srcAcc, mintAcc, destAcc, authority := accounts[0], accounts[1], accounts[2], accounts[3]
	if err := srcAcc.RequireWritable(); err != nil {
		return err
	}
	if err := destAcc.RequireWritable(); err != nil {
		return err
	}
	src, err := LoadAccount(srcAcc)
	if err != nil {
		return err
	}
	dest, err := LoadAccount(destAcc)
	if err != nil {
		return err
	}
	if src.State == StateFrozen || dest.State == StateFrozen {
		return errors.Wrap(ErrFrozen, "transfer")
	}
	if src.Mint != dest.Mint {
		return errors.Wrapf(ErrMintMismatch, "source holds %s, destination %s", src.Mint, dest.Mint)
	}
	if src.Mint != mintAcc.Key {
		return errors.Wrapf(ErrMintMismatch, "source holds %s, not %s", src.Mint, mintAcc.Key)
	}
	m, err := LoadMint(mintAcc)
	if err != nil {
		return err
	}
	if m.Decimals != decimals {
		return errors.Wrapf(ErrDecimalsMismatch, "mint has %d decimals, got %d", m.Decimals, decimals)
	}
	if err := requireAuthority(authority, src.Owner); err != nil {
		return err
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s holds %d, need %d", srcAcc.Key, src.Amount, amount)
	}
	if srcAcc.Key == destAcc.Key {
		return nil
	}
	balance := dest.Amount + amount
	if balance < dest.Amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	src.Amount -= amount
	dest.Amount = balance
	src.Pack(srcAcc.Data)
	dest.Pack(destAcc.Data)
	info.Logger().Debug("tokens transferred", "from", srcAcc.Key, "to", destAcc.Key, "amount", amount)
	return nil
}

func (Program) closeAccount(info tokenswap.BlockInfo, accounts []*tokenswap.AccountInfo) error {
	if err := tokenswap.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	acc, destAcc, authority := accounts[0], accounts[1], accounts[2]
	if err := acc.RequireWritable(); err != nil {
		return err
	}
	if err := destAcc.RequireWritable(); err != nil {
		return err
	}
	a, err := LoadAccount(acc)
	if err != nil {
		return err
	}
	if a.IsNative == nil && a.Amount != 0 {
		return errors.Wrapf(ErrNonZeroBalance, "%s holds %d", acc.Key, a.Amount)
	}
	closer := a.Owner
	if a.CloseAuthority != nil {
		closer = *a.CloseAuthority
	}
	if err := requireAuthority(authority, closer); err != nil {
		return err
	}
	if err := acc.Close(destAcc); err != nil {
		return err
	}
	info.Logger().Debug("token account closed", "account", acc.Key, "dest", destAcc.Key)
	return nil
}

// requireAllocated checks that an account was created for the token
// program with the right size and a rent exempt balance.
func requireAllocated(info tokenswap.BlockInfo, acc *tokenswap.AccountInfo, size int) error {
	if err := acc.RequireWritable(); err != nil {
		return err
	}
	if !acc.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrProgram, "%s not owned by the token program", acc.Key)
	}
	if len(acc.Data) != size {
		return errors.Wrapf(errors.ErrAccountData, "%s holds %d bytes, want %d", acc.Key, len(acc.Data), size)
	}
	if !info.Rent().IsExempt(acc.Lamports, size) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s is not rent exempt", acc.Key)
	}
	return nil
}

func requireAuthority(acc *tokenswap.AccountInfo, want tokenswap.Address) error {
	if acc.Key != want {
		return errors.Wrapf(ErrOwnerMismatch, "want %s, got %s", want, acc.Key)
	}
	return acc.RequireSigner()
}
