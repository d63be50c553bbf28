package system

import (
	"github.com/iov-one/tokenswap"
)

// Instruction discriminators.
const (
	InstructionCreateAccount uint8 = iota
	InstructionAssign
	InstructionTransfer
)

// MaxAccountData is the largest data size an account can be created with.
const MaxAccountData = 10 * 1024 * 1024

// CreateAccount returns an instruction that funds newAccount with lamports
// taken from funder, allocates space bytes of zeroed data and assigns it to
// owner. Both accounts must sign.
func CreateAccount(funder, newAccount tokenswap.Address, lamports, space uint64, owner tokenswap.Address) tokenswap.Instruction {
	return tokenswap.Instruction{
		ProgramID: tokenswap.SystemProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(funder, true),
			tokenswap.Writable(newAccount, true),
		},
		Data: tokenswap.NewDataWriter(InstructionCreateAccount).
			Uint64(lamports).
			Uint64(space).
			Address(owner).
			Bytes(),
	}
}

// Assign returns an instruction that hands an account over to owner.
func Assign(account, owner tokenswap.Address) tokenswap.Instruction {
	return tokenswap.Instruction{
		ProgramID: tokenswap.SystemProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(account, true),
		},
		Data: tokenswap.NewDataWriter(InstructionAssign).Address(owner).Bytes(),
	}
}

// Transfer returns an instruction that moves lamports between two accounts.
func Transfer(from, to tokenswap.Address, lamports uint64) tokenswap.Instruction {
	return tokenswap.Instruction{
		ProgramID: tokenswap.SystemProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(from, true),
			tokenswap.Writable(to, false),
		},
		Data: tokenswap.NewDataWriter(InstructionTransfer).Uint64(lamports).Bytes(),
	}
}
