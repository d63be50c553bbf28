package token

import (
	"github.com/iov-one/tokenswap"
)

var (
	// ProgramID is the address of the token program.
	ProgramID = tokenswap.ProgramAddress("token")
	// AssociatedProgramID is the address of the associated token program.
	AssociatedProgramID = tokenswap.ProgramAddress("associated_token")
)

// Token instruction discriminators. The values follow the numbering
// wallets already know.
const (
	InstructionMintTo            uint8 = 7
	InstructionCloseAccount      uint8 = 9
	InstructionTransferChecked   uint8 = 12
	InstructionInitializeAccount uint8 = 18
	InstructionInitializeMint    uint8 = 20
)

// InitializeMint returns an instruction that sets up an allocated mint.
// A nil freeze authority leaves the mint without one.
func InitializeMint(mint, authority tokenswap.Address, freeze *tokenswap.Address, decimals uint8) tokenswap.Instruction {
	w := tokenswap.NewDataWriter(InstructionInitializeMint).Uint8(decimals).Address(authority)
	if freeze != nil {
		w.Uint8(1).Address(*freeze)
	} else {
		w.Uint8(0)
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts:  []tokenswap.AccountMeta{tokenswap.Writable(mint, false)},
		Data:      w.Bytes(),
	}
}

// InitializeAccount returns an instruction that sets up an allocated token
// account holding given mint on behalf of owner.
func InitializeAccount(account, mint, owner tokenswap.Address) tokenswap.Instruction {
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(account, false),
			tokenswap.ReadOnly(mint, false),
		},
		Data: tokenswap.NewDataWriter(InstructionInitializeAccount).Address(owner).Bytes(),
	}
}

// MintTo returns an instruction that creates amount new units into dest.
func MintTo(mint, dest, authority tokenswap.Address, amount uint64) tokenswap.Instruction {
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(mint, false),
			tokenswap.Writable(dest, false),
			tokenswap.ReadOnly(authority, true),
		},
		Data: tokenswap.NewDataWriter(InstructionMintTo).Uint64(amount).Bytes(),
	}
}

// TransferChecked returns an instruction that moves amount from source to
// dest. decimals must match the mint, protecting against a client
// misreading the unit.
func TransferChecked(source, mint, dest, authority tokenswap.Address, amount uint64, decimals uint8) tokenswap.Instruction {
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(source, false),
			tokenswap.ReadOnly(mint, false),
			tokenswap.Writable(dest, false),
			tokenswap.ReadOnly(authority, true),
		},
		Data: tokenswap.NewDataWriter(InstructionTransferChecked).Uint64(amount).Uint8(decimals).Bytes(),
	}
}

// CloseAccount returns an instruction that removes an empty token account
// and sends its lamports to dest.
func CloseAccount(account, dest, owner tokenswap.Address) tokenswap.Instruction {
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(account, false),
			tokenswap.Writable(dest, false),
			tokenswap.ReadOnly(owner, true),
		},
		Data: []byte{InstructionCloseAccount},
	}
}
