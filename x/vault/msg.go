package vault

import (
	"github.com/iov-one/tokenswap"
)

// ProgramID is the address of the vault program.
var ProgramID = tokenswap.ProgramAddress("vault")

// Instruction discriminators.
const (
	InstructionDeposit uint8 = iota
	InstructionWithdraw
)

const vaultSeed = "vault"

// Address returns the vault of owner and its canonical bump.
func Address(owner tokenswap.Address) (tokenswap.Address, uint8, error) {
	return tokenswap.FindProgramAddress(ProgramID, []byte(vaultSeed), owner[:])
}

func accounts(owner tokenswap.Address) ([]tokenswap.AccountMeta, error) {
	v, _, err := Address(owner)
	if err != nil {
		return nil, err
	}
	return []tokenswap.AccountMeta{
		tokenswap.Writable(owner, true),
		tokenswap.Writable(v, false),
		tokenswap.ReadOnly(tokenswap.SystemProgramID, false),
	}, nil
}

// Deposit returns an instruction moving amount lamports into the vault of
// owner.
func Deposit(owner tokenswap.Address, amount uint64) (tokenswap.Instruction, error) {
	metas, err := accounts(owner)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts:  metas,
		Data:      tokenswap.NewDataWriter(InstructionDeposit).Uint64(amount).Bytes(),
	}, nil
}

// Withdraw returns an instruction emptying the vault of owner.
func Withdraw(owner tokenswap.Address) (tokenswap.Instruction, error) {
	metas, err := accounts(owner)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts:  metas,
		Data:      []byte{InstructionWithdraw},
	}, nil
}
