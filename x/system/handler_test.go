package system_test

import (
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/weavetest"
	"github.com/iov-one/tokenswap/weavetest/assert"
	"github.com/iov-one/tokenswap/x/system"
)

func TestCreateAccount(t *testing.T) {
	l := weavetest.NewLedger(t)
	alice := l.Wallet("alice", 10000000)
	fresh := weavetest.NewKey()
	owner := tokenswap.ProgramAddress("demo")
	deposit := l.Rent().MinimumBalance(20)

	l.MustExec(weavetest.Signers(alice, fresh),
		system.CreateAccount(alice.Address(), fresh.Address(), deposit, 20, owner))

	acc := l.MustAccount(fresh.Address())
	assert.Equal(t, deposit, acc.Lamports)
	assert.Equal(t, owner, acc.Owner)
	assert.Equal(t, make([]byte, 20), acc.Data)
	assert.Equal(t, 10000000-deposit, l.Lamports(alice.Address()))

	// Creating it again fails, the address is taken.
	_, err := l.Exec(weavetest.Signers(alice, fresh),
		system.CreateAccount(alice.Address(), fresh.Address(), deposit, 20, owner))
	assert.IsErr(t, errors.ErrAccountInUse, err)
}

func TestSystemErrors(t *testing.T) {
	l := weavetest.NewLedger(t)
	alice := l.Wallet("alice", 1000000)
	bob := l.Wallet("bob", 1000000)
	fresh := weavetest.NewKey()

	cases := map[string]struct {
		signers []*crypto.PrivateKey
		ix      tokenswap.Instruction
		wantErr *errors.Error
	}{
		"transfer more than held": {
			signers: []*crypto.PrivateKey{alice},
			ix:      system.Transfer(alice.Address(), bob.Address(), 1000001),
			wantErr: errors.ErrInsufficientAmount,
		},
		"transfer to read only account": {
			signers: []*crypto.PrivateKey{alice},
			ix: tokenswap.Instruction{
				ProgramID: tokenswap.SystemProgramID,
				Accounts: []tokenswap.AccountMeta{
					tokenswap.Writable(alice.Address(), true),
					tokenswap.ReadOnly(bob.Address(), false),
				},
				Data: system.Transfer(alice.Address(), bob.Address(), 1).Data,
			},
			wantErr: errors.ErrPrivilege,
		},
		"space too large": {
			signers: []*crypto.PrivateKey{alice, fresh},
			ix:      system.CreateAccount(alice.Address(), fresh.Address(), 1, system.MaxAccountData+1, tokenswap.Address{}),
			wantErr: errors.ErrInvalidInput,
		},
		"assign without signature of the account": {
			signers: []*crypto.PrivateKey{alice},
			ix: tokenswap.Instruction{
				ProgramID: tokenswap.SystemProgramID,
				Accounts:  []tokenswap.AccountMeta{tokenswap.Writable(bob.Address(), false)},
				Data:      system.Assign(bob.Address(), tokenswap.ProgramAddress("demo")).Data,
			},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown instruction": {
			ix:      tokenswap.Instruction{ProgramID: tokenswap.SystemProgramID, Data: []byte{99}},
			wantErr: errors.ErrInvalidMsg,
		},
		"truncated data": {
			signers: []*crypto.PrivateKey{alice},
			ix: tokenswap.Instruction{
				ProgramID: tokenswap.SystemProgramID,
				Accounts:  system.Transfer(alice.Address(), bob.Address(), 1).Accounts,
				Data:      []byte{system.InstructionTransfer, 1},
			},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := l.Exec(weavetest.Signers(tc.signers...), tc.ix)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, uint64(1000000), l.Lamports(alice.Address()))
			assert.Equal(t, uint64(1000000), l.Lamports(bob.Address()))
		})
	}
}

func TestAssign(t *testing.T) {
	l := weavetest.NewLedger(t)
	alice := l.Wallet("alice", 1000)
	owner := tokenswap.ProgramAddress("demo")

	l.MustExec(weavetest.Signers(alice), system.Assign(alice.Address(), owner))
	assert.Equal(t, owner, l.MustAccount(alice.Address()).Owner)

	// Only system owned accounts can be handed over.
	_, err := l.Exec(weavetest.Signers(alice), system.Assign(alice.Address(), tokenswap.SystemProgramID))
	assert.IsErr(t, system.ErrNotSystemOwned, err)
}
