package escrow

import (
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/token"
)

// Instruction discriminators.
const (
	InstructionMake uint8 = iota
	InstructionTake
	InstructionRefund
)

// makeDataLen is the discriminator followed by seed, receive and amount.
const makeDataLen = 1 + 3*8

// MakeParams describes a new swap offer.
type MakeParams struct {
	Maker       tokenswap.Address
	MintDeposit tokenswap.Address
	MintReceive tokenswap.Address
	Seed        uint64
	// Receive is the amount of MintReceive asked in return.
	Receive uint64
	// Amount is the amount of MintDeposit locked in the vault.
	Amount uint64
	// MakerHolding is the token account the deposit is taken from. The
	// associated account of the maker is used when zero.
	MakerHolding tokenswap.Address
}

// Make returns the instruction opening an offer.
func Make(p MakeParams) (tokenswap.Instruction, error) {
	record, _, err := RecordAddress(p.Maker, p.Seed)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	vault, _, err := VaultAddress(p.MintDeposit, record)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	holding := p.MakerHolding
	if holding.IsZero() {
		if holding, _, err = token.AssociatedAddress(p.Maker, p.MintDeposit); err != nil {
			return tokenswap.Instruction{}, err
		}
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(p.Maker, true),
			tokenswap.Writable(record, false),
			tokenswap.Writable(vault, false),
			tokenswap.ReadOnly(p.MintDeposit, false),
			tokenswap.ReadOnly(p.MintReceive, false),
			tokenswap.Writable(holding, false),
			tokenswap.ReadOnly(tokenswap.SystemProgramID, false),
			tokenswap.ReadOnly(token.ProgramID, false),
		},
		Data: tokenswap.NewDataWriter(InstructionMake).
			Uint64(p.Seed).
			Uint64(p.Receive).
			Uint64(p.Amount).
			Bytes(),
	}, nil
}

// TakeParams describes the settlement of an offer. Zero holdings default
// to the associated token accounts of their owners.
type TakeParams struct {
	Taker  tokenswap.Address
	Record Record

	// TakerDepositHolding receives the deposit.
	TakerDepositHolding tokenswap.Address
	// TakerReceiveHolding pays the asked amount.
	TakerReceiveHolding tokenswap.Address
	// MakerReceiveHolding receives the asked amount.
	MakerReceiveHolding tokenswap.Address
}

// Take returns the instruction settling an offer.
func Take(p TakeParams) (tokenswap.Instruction, error) {
	rec := p.Record
	record, err := rec.Address()
	if err != nil {
		return tokenswap.Instruction{}, errors.Wrap(err, "record")
	}
	vault, _, err := VaultAddress(rec.MintDeposit, record)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	holdings := []struct {
		addr         *tokenswap.Address
		wallet, mint tokenswap.Address
	}{
		{&p.TakerDepositHolding, p.Taker, rec.MintDeposit},
		{&p.TakerReceiveHolding, p.Taker, rec.MintReceive},
		{&p.MakerReceiveHolding, rec.Maker, rec.MintReceive},
	}
	for _, h := range holdings {
		if h.addr.IsZero() {
			if *h.addr, _, err = token.AssociatedAddress(h.wallet, h.mint); err != nil {
				return tokenswap.Instruction{}, err
			}
		}
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(p.Taker, true),
			tokenswap.Writable(rec.Maker, false),
			tokenswap.Writable(record, false),
			tokenswap.Writable(vault, false),
			tokenswap.ReadOnly(rec.MintDeposit, false),
			tokenswap.ReadOnly(rec.MintReceive, false),
			tokenswap.Writable(p.TakerDepositHolding, false),
			tokenswap.Writable(p.TakerReceiveHolding, false),
			tokenswap.Writable(p.MakerReceiveHolding, false),
			tokenswap.ReadOnly(tokenswap.SystemProgramID, false),
			tokenswap.ReadOnly(token.ProgramID, false),
			tokenswap.ReadOnly(token.AssociatedProgramID, false),
		},
		Data: []byte{InstructionTake},
	}, nil
}

// Refund returns the instruction cancelling an offer. A zero holding
// defaults to the associated deposit token account of the maker.
func Refund(rec Record, makerHolding tokenswap.Address) (tokenswap.Instruction, error) {
	record, err := rec.Address()
	if err != nil {
		return tokenswap.Instruction{}, errors.Wrap(err, "record")
	}
	vault, _, err := VaultAddress(rec.MintDeposit, record)
	if err != nil {
		return tokenswap.Instruction{}, err
	}
	if makerHolding.IsZero() {
		if makerHolding, _, err = token.AssociatedAddress(rec.Maker, rec.MintDeposit); err != nil {
			return tokenswap.Instruction{}, err
		}
	}
	return tokenswap.Instruction{
		ProgramID: ProgramID,
		Accounts: []tokenswap.AccountMeta{
			tokenswap.Writable(rec.Maker, true),
			tokenswap.Writable(record, false),
			tokenswap.Writable(vault, false),
			tokenswap.ReadOnly(rec.MintDeposit, false),
			tokenswap.Writable(makerHolding, false),
			tokenswap.ReadOnly(tokenswap.SystemProgramID, false),
			tokenswap.ReadOnly(token.ProgramID, false),
			tokenswap.ReadOnly(token.AssociatedProgramID, false),
		},
		Data: []byte{InstructionRefund},
	}, nil
}
