package escrow

import (
	"context"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
)

// Program is the escrow program. It keeps no state of its own, all of it
// lives in record and vault accounts.
type Program struct{}

var _ tokenswap.Program = Program{}

func (Program) ID() tokenswap.Address {
	return ProgramID
}

func (Program) Name() string {
	return "escrow"
}

// Process dispatches an instruction by its first byte. Every check runs
// before the first change, so a rejected instruction has no effect even
// without the transaction being discarded.
func (p Program) Process(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "empty instruction data")
	}
	switch data[0] {
	case InstructionMake:
		return p.make(ctx, info, inv, accounts, data[1:])
	case InstructionTake:
		return p.take(ctx, info, inv, accounts, data[1:])
	case InstructionRefund:
		return p.refund(ctx, info, inv, accounts, data[1:])
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown escrow instruction %d", data[0])
	}
}

// make expects accounts
// [maker (s, w), record (w), vault (w), mint deposit, mint receive,
// maker deposit holding (w), system program, token program].
func (Program) make(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if err := tokenswap.RequireAccounts(accounts, 8); err != nil {
		return err
	}
	maker, recordAcc, vaultAcc := accounts[0], accounts[1], accounts[2]
	mintDeposit, mintReceive, holdingAcc := accounts[3], accounts[4], accounts[5]

	if !maker.IsSigner {
		return errors.Wrapf(ErrUnauthorized, "maker %s must sign", maker.Key)
	}
	if err := requireWritable(maker, recordAcc, vaultAcc, holdingAcc); err != nil {
		return err
	}
	if err := requirePrograms(accounts[6], accounts[7], nil); err != nil {
		return err
	}

	r := tokenswap.NewDataReader(data)
	seed, receive, amount := r.Uint64(), r.Uint64(), r.Uint64()
	if err := r.Err(); err != nil {
		return err
	}
	if receive == 0 {
		return errors.Wrap(ErrInvalidAmount, "receive")
	}
	if amount == 0 {
		return errors.Wrap(ErrInvalidAmount, "deposit")
	}
	if mintDeposit.Key == mintReceive.Key {
		return errors.Wrap(ErrIdenticalMints, mintDeposit.Key.String())
	}
	depositMint, err := token.LoadMint(mintDeposit)
	if err != nil {
		return errors.Wrap(ErrAccountMismatch, err.Error())
	}
	if _, err := token.LoadMint(mintReceive); err != nil {
		return errors.Wrap(ErrAccountMismatch, err.Error())
	}

	record, bump, err := RecordAddress(maker.Key, seed)
	if err != nil {
		return err
	}
	if recordAcc.Key != record {
		return errors.Wrapf(ErrAccountMismatch, "record of seed %d is %s, got %s", seed, record, recordAcc.Key)
	}
	if !recordAcc.IsEmpty() {
		return errors.Wrapf(ErrRecordAlreadyExists, "record %s", record)
	}
	vault, vaultBump, err := VaultAddress(mintDeposit.Key, record)
	if err != nil {
		return err
	}
	if vaultAcc.Key != vault {
		return errors.Wrapf(ErrAccountMismatch, "vault is %s, got %s", vault, vaultAcc.Key)
	}
	if !vaultAcc.IsEmpty() {
		return errors.Wrapf(ErrRecordAlreadyExists, "vault %s", vault)
	}

	holding, err := token.LoadAccount(holdingAcc)
	if err != nil {
		return errors.Wrap(ErrAccountMismatch, err.Error())
	}
	if holding.Owner != maker.Key || holding.Mint != mintDeposit.Key {
		return errors.Wrapf(ErrAccountMismatch, "%s is not a %s holding of the maker", holdingAcc.Key, mintDeposit.Key)
	}
	if holding.Amount < amount {
		return errors.Wrapf(ErrInsufficientBalance, "maker holds %d, deposit is %d", holding.Amount, amount)
	}
	recordRent := info.Rent().MinimumBalance(RecordLen)
	if deposits := recordRent + info.Rent().MinimumBalance(token.AccountLen); maker.Lamports < deposits {
		return errors.Wrapf(ErrInsufficientBalance, "maker holds %d lamports, storage needs %d", maker.Lamports, deposits)
	}

	rec := &Record{
		Seed:          seed,
		Maker:         maker.Key,
		MintDeposit:   mintDeposit.Key,
		MintReceive:   mintReceive.Key,
		ReceiveAmount: receive,
		Bump:          bump,
	}
	create := system.CreateAccount(maker.Key, record, recordRent, RecordLen, ProgramID)
	if err := inv.Invoke(ctx, create, accounts, rec.signerSeeds()); err != nil {
		return errors.Wrap(err, "create record")
	}
	rec.Pack(recordAcc.Data)

	if err := openVault(ctx, info, inv, accounts, maker.Key, vault, mintDeposit.Key, record, vaultBump); err != nil {
		return err
	}
	deposit := token.TransferChecked(holdingAcc.Key, mintDeposit.Key, vault, maker.Key, amount, depositMint.Decimals)
	if err := inv.Invoke(ctx, deposit, accounts); err != nil {
		return errors.Wrap(err, "deposit")
	}
	info.Logger().Info("escrow opened", "record", record, "maker", maker.Key, "seed", seed,
		"deposit", amount, "receive", receive)
	return nil
}

// take expects accounts
// [taker (s, w), maker (w), record (w), vault (w), mint deposit,
// mint receive, taker deposit holding (w), taker receive holding (w),
// maker receive holding (w), system program, token program,
// associated token program].
func (Program) take(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if err := tokenswap.RequireAccounts(accounts, 12); err != nil {
		return err
	}
	taker, maker, recordAcc, vaultAcc := accounts[0], accounts[1], accounts[2], accounts[3]
	mintDeposit, mintReceive := accounts[4], accounts[5]
	takerDeposit, takerReceive, makerReceive := accounts[6], accounts[7], accounts[8]

	if !taker.IsSigner {
		return errors.Wrapf(ErrUnauthorized, "taker %s must sign", taker.Key)
	}
	if err := requireWritable(taker, maker, recordAcc, vaultAcc, takerDeposit, takerReceive, makerReceive); err != nil {
		return err
	}
	if err := requirePrograms(accounts[9], accounts[10], accounts[11]); err != nil {
		return err
	}
	if err := tokenswap.NewDataReader(data).Err(); err != nil {
		return err
	}

	rec, err := loadRecord(recordAcc)
	if err != nil {
		return err
	}
	if maker.Key != rec.Maker {
		return errors.Wrapf(ErrAccountMismatch, "maker is %s, got %s", rec.Maker, maker.Key)
	}
	if mintDeposit.Key != rec.MintDeposit || mintReceive.Key != rec.MintReceive {
		return errors.Wrap(ErrAccountMismatch, "mints")
	}
	vault, err := loadVault(vaultAcc, recordAcc.Key, rec)
	if err != nil {
		return err
	}
	depositMint, err := token.LoadMint(mintDeposit)
	if err != nil {
		return errors.Wrap(ErrAccountMismatch, err.Error())
	}
	receiveMint, err := token.LoadMint(mintReceive)
	if err != nil {
		return errors.Wrap(ErrAccountMismatch, err.Error())
	}

	if takerReceive.IsEmpty() {
		return errors.Wrapf(ErrInsufficientBalance, "taker holding %s does not exist", takerReceive.Key)
	}
	pay, err := token.LoadAccount(takerReceive)
	if err != nil {
		return errors.Wrap(ErrAccountMismatch, err.Error())
	}
	if pay.Owner != taker.Key || pay.Mint != rec.MintReceive {
		return errors.Wrapf(ErrAccountMismatch, "%s is not a %s holding of the taker", takerReceive.Key, rec.MintReceive)
	}
	if pay.Amount < rec.ReceiveAmount {
		return errors.Wrapf(ErrInsufficientBalance, "taker holds %d, asked %d", pay.Amount, rec.ReceiveAmount)
	}

	dests := []holdingSpec{
		{acc: takerDeposit, wallet: taker.Key, mint: rec.MintDeposit},
		{acc: makerReceive, wallet: rec.Maker, mint: rec.MintReceive},
	}
	var missing []holdingSpec
	for _, d := range dests {
		create, err := checkHolding(d)
		if err != nil {
			return err
		}
		if create {
			missing = append(missing, d)
		}
	}
	if need := uint64(len(missing)) * info.Rent().MinimumBalance(token.AccountLen); taker.Lamports < need {
		return errors.Wrapf(ErrInsufficientBalance, "taker holds %d lamports, storage needs %d", taker.Lamports, need)
	}

	for _, d := range missing {
		if err := inv.Invoke(ctx, token.CreateAssociated(taker.Key, d.wallet, d.mint, false), accounts); err != nil {
			return errors.Wrapf(err, "create holding of %s", d.wallet)
		}
	}
	payment := token.TransferChecked(takerReceive.Key, rec.MintReceive, makerReceive.Key, taker.Key, rec.ReceiveAmount, receiveMint.Decimals)
	if err := inv.Invoke(ctx, payment, accounts); err != nil {
		return errors.Wrap(err, "payment")
	}
	if err := drainVault(ctx, inv, accounts, rec, recordAcc.Key, vaultAcc.Key, takerDeposit.Key, vault.Amount, depositMint.Decimals); err != nil {
		return err
	}
	if err := recordAcc.Close(maker); err != nil {
		return errors.Wrap(err, "close record")
	}
	info.Logger().Info("escrow settled", "record", recordAcc.Key, "maker", rec.Maker, "taker", taker.Key,
		"deposit", vault.Amount, "receive", rec.ReceiveAmount)
	return nil
}

// refund expects accounts
// [maker (s, w), record (w), vault (w), mint deposit,
// maker deposit holding (w), system program, token program,
// associated token program].
func (Program) refund(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if err := tokenswap.RequireAccounts(accounts, 8); err != nil {
		return err
	}
	maker, recordAcc, vaultAcc, mintDeposit, holdingAcc := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	if !maker.IsSigner {
		return errors.Wrapf(ErrUnauthorized, "maker %s must sign", maker.Key)
	}
	if err := requireWritable(maker, recordAcc, vaultAcc, holdingAcc); err != nil {
		return err
	}
	if err := requirePrograms(accounts[5], accounts[6], accounts[7]); err != nil {
		return err
	}
	if err := tokenswap.NewDataReader(data).Err(); err != nil {
		return err
	}

	rec, err := loadRecord(recordAcc)
	if err != nil {
		return err
	}
	if maker.Key != rec.Maker {
		return errors.Wrapf(ErrUnauthorized, "only maker %s can refund", rec.Maker)
	}
	if mintDeposit.Key != rec.MintDeposit {
		return errors.Wrap(ErrAccountMismatch, "deposit mint")
	}
	vault, err := loadVault(vaultAcc, recordAcc.Key, rec)
	if err != nil {
		return err
	}
	depositMint, err := token.LoadMint(mintDeposit)
	if err != nil {
		return errors.Wrap(ErrAccountMismatch, err.Error())
	}
	dest := holdingSpec{acc: holdingAcc, wallet: maker.Key, mint: rec.MintDeposit}
	create, err := checkHolding(dest)
	if err != nil {
		return err
	}
	if create {
		if need := info.Rent().MinimumBalance(token.AccountLen); maker.Lamports < need {
			return errors.Wrapf(ErrInsufficientBalance, "maker holds %d lamports, storage needs %d", maker.Lamports, need)
		}
		if err := inv.Invoke(ctx, token.CreateAssociated(maker.Key, maker.Key, rec.MintDeposit, false), accounts); err != nil {
			return errors.Wrap(err, "create holding")
		}
	}

	if err := drainVault(ctx, inv, accounts, rec, recordAcc.Key, vaultAcc.Key, holdingAcc.Key, vault.Amount, depositMint.Decimals); err != nil {
		return err
	}
	if err := recordAcc.Close(maker); err != nil {
		return errors.Wrap(err, "close record")
	}
	info.Logger().Info("escrow refunded", "record", recordAcc.Key, "maker", rec.Maker, "deposit", vault.Amount)
	return nil
}

// loadRecord decodes an active record and checks that it is stored under
// the address its terms derive.
func loadRecord(acc *tokenswap.AccountInfo) (*Record, error) {
	if acc.IsEmpty() {
		return nil, errors.Wrapf(ErrRecordNotFound, "%s", acc.Key)
	}
	if !acc.IsOwnedBy(ProgramID) {
		return nil, errors.Wrapf(ErrAccountMismatch, "%s is not owned by the escrow program", acc.Key)
	}
	rec, err := UnpackRecord(acc.Data)
	if err != nil {
		return nil, errors.Wrap(ErrAccountMismatch, err.Error())
	}
	addr, err := rec.Address()
	if err != nil || addr != acc.Key {
		return nil, errors.Wrapf(ErrAccountMismatch, "record terms do not derive %s", acc.Key)
	}
	return rec, nil
}

type holdingSpec struct {
	acc          *tokenswap.AccountInfo
	wallet, mint tokenswap.Address
}

// checkHolding validates a token account receiving funds. It returns true
// if the account does not exist yet and has to be created at the
// associated address.
func checkHolding(h holdingSpec) (bool, error) {
	if h.acc.IsEmpty() {
		want, _, err := token.AssociatedAddress(h.wallet, h.mint)
		if err != nil {
			return false, err
		}
		if h.acc.Key != want {
			return false, errors.Wrapf(ErrAccountMismatch, "missing holding %s is not the associated account %s", h.acc.Key, want)
		}
		return true, nil
	}
	a, err := token.LoadAccount(h.acc)
	if err != nil {
		return false, errors.Wrap(ErrAccountMismatch, err.Error())
	}
	if a.Owner != h.wallet || a.Mint != h.mint {
		return false, errors.Wrapf(ErrAccountMismatch, "%s is not a %s holding of %s", h.acc.Key, h.mint, h.wallet)
	}
	return false, nil
}

func requireWritable(accounts ...*tokenswap.AccountInfo) error {
	for _, a := range accounts {
		if err := a.RequireWritable(); err != nil {
			return err
		}
	}
	return nil
}

// requirePrograms checks the program accounts passed for cross program
// calls. ata is optional.
func requirePrograms(sys, tok, ata *tokenswap.AccountInfo) error {
	if sys.Key != tokenswap.SystemProgramID {
		return errors.Wrapf(ErrAccountMismatch, "system program expected, got %s", sys.Key)
	}
	if tok.Key != token.ProgramID {
		return errors.Wrapf(ErrAccountMismatch, "token program expected, got %s", tok.Key)
	}
	if ata != nil && ata.Key != token.AssociatedProgramID {
		return errors.Wrapf(ErrAccountMismatch, "associated token program expected, got %s", ata.Key)
	}
	return nil
}
