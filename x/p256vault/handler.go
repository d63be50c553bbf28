package p256vault

import (
	"context"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/vault"
)

// Program is the P-256 vault program.
type Program struct{}

var _ tokenswap.Program = Program{}

func (Program) ID() tokenswap.Address {
	return ProgramID
}

func (Program) Name() string {
	return "p256vault"
}

// Process expects accounts [payer (s, w), vault (w), system program].
func (p Program) Process(ctx context.Context, info tokenswap.BlockInfo, inv tokenswap.Invoker, accounts []*tokenswap.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "empty instruction data")
	}
	if err := tokenswap.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, v := accounts[0], accounts[1]
	if err := payer.RequireSigner(); err != nil {
		return err
	}
	if accounts[2].Key != tokenswap.SystemProgramID {
		return errors.Wrap(errors.ErrProgram, "system program expected")
	}
	if !v.IsOwnedBy(tokenswap.SystemProgramID) {
		return errors.Wrapf(errors.ErrProgram, "vault %s not owned by the system program", v.Key)
	}

	r := tokenswap.NewDataReader(data[1:])
	pubkey := r.Fixed(PubKeyLength)
	switch data[0] {
	case InstructionDeposit:
		amount := r.Uint64()
		if err := r.Err(); err != nil {
			return err
		}
		if _, err := vaultOf(v, pubkey); err != nil {
			return err
		}
		if amount == 0 {
			return errors.Wrap(errors.ErrInvalidAmount, "zero deposit")
		}
		if v.Lamports != 0 {
			return errors.Wrapf(vault.ErrVaultInUse, "%s", v.Key)
		}
		if err := inv.Invoke(ctx, system.Transfer(payer.Key, v.Key, amount), accounts); err != nil {
			return err
		}
		info.Logger().Info("p256 vault deposit", "vault", v.Key, "lamports", amount)
		return nil
	case InstructionWithdraw:
		auth := Authorization{
			Payer:     r.Address(),
			Expiry:    int64(r.Uint64()),
			Signature: r.Fixed(SignatureLength),
		}
		if err := r.Err(); err != nil {
			return err
		}
		bump, err := vaultOf(v, pubkey)
		if err != nil {
			return err
		}
		if v.Lamports == 0 {
			return errors.Wrapf(vault.ErrVaultEmpty, "%s", v.Key)
		}
		if err := auth.Verify(pubkey); err != nil {
			return err
		}
		if auth.Payer != payer.Key {
			return errors.Wrapf(ErrPayerMismatch, "signed for %s, paying %s", auth.Payer, payer.Key)
		}
		if now := info.BlockTime().Unix(); now > auth.Expiry {
			return errors.Wrapf(ErrExpired, "expired at %d, now %d", auth.Expiry, now)
		}
		amount := v.Lamports
		seeds := [][]byte{[]byte(vaultSeed), pubkey[:1], pubkey[1:], {bump}}
		if err := inv.Invoke(ctx, system.Transfer(v.Key, payer.Key, amount), accounts, seeds); err != nil {
			return err
		}
		info.Logger().Info("p256 vault withdraw", "vault", v.Key, "payer", payer.Key, "lamports", amount)
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown p256 vault instruction %d", data[0])
	}
}

// vaultOf checks that v is the vault of a valid public key and returns its
// bump.
func vaultOf(v *tokenswap.AccountInfo, pubkey []byte) (uint8, error) {
	if _, err := parsePublicKey(pubkey); err != nil {
		return 0, err
	}
	want, bump, err := Address(pubkey)
	if err != nil {
		return 0, err
	}
	if v.Key != want {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "vault of key is %s, got %s", want, v.Key)
	}
	return bump, nil
}
