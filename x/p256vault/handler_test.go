package p256vault_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/weavetest"
	"github.com/iov-one/tokenswap/weavetest/assert"
	"github.com/iov-one/tokenswap/x/p256vault"
	"github.com/iov-one/tokenswap/x/vault"
)

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.Nil(t, err)
	return key
}

func TestDepositWithdraw(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := weavetest.NewLedger(t, runtime.WithClock(func() time.Time { return now }))
	alice := l.Wallet("alice", 10000)
	bob := l.Wallet("bob", 10000)
	key := newKey(t)
	pubkey := p256vault.CompressPublicKey(&key.PublicKey)
	v, _, err := p256vault.Address(pubkey)
	assert.Nil(t, err)

	ix, err := p256vault.Deposit(alice.Address(), pubkey, 4000)
	assert.Nil(t, err)
	l.MustExec(weavetest.Signers(alice), ix)
	assert.Equal(t, uint64(6000), l.Lamports(alice.Address()))
	assert.Equal(t, uint64(4000), l.Lamports(v))

	_, err = l.Exec(weavetest.Signers(bob), mustDeposit(t, bob.Address(), pubkey, 1))
	assert.IsErr(t, vault.ErrVaultInUse, err)

	// The key holder hands the balance to bob. An authorization is valid
	// up to and including its expiry second.
	auth, err := p256vault.Sign(key, bob.Address(), now.Unix())
	assert.Nil(t, err)
	ix, err = p256vault.Withdraw(bob.Address(), pubkey, auth)
	assert.Nil(t, err)
	l.MustExec(weavetest.Signers(bob), ix)
	assert.Equal(t, uint64(14000), l.Lamports(bob.Address()))
	assert.Equal(t, true, l.MustAccount(v).IsEmpty())

	_, err = l.Exec(weavetest.Signers(bob), ix)
	assert.IsErr(t, vault.ErrVaultEmpty, err)
}

func mustDeposit(t testing.TB, payer tokenswap.Address, pubkey []byte, amount uint64) tokenswap.Instruction {
	t.Helper()
	ix, err := p256vault.Deposit(payer, pubkey, amount)
	assert.Nil(t, err)
	return ix
}

func TestWithdrawErrors(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := weavetest.NewLedger(t, runtime.WithClock(func() time.Time { return now }))
	alice := l.Wallet("alice", 10000)
	bob := l.Wallet("bob", 10000)
	key := newKey(t)
	pubkey := p256vault.CompressPublicKey(&key.PublicKey)
	v, _, err := p256vault.Address(pubkey)
	assert.Nil(t, err)
	l.MustExec(weavetest.Signers(alice), mustDeposit(t, alice.Address(), pubkey, 500))

	other := newKey(t)
	otherPub := p256vault.CompressPublicKey(&other.PublicKey)
	otherVault, _, err := p256vault.Address(otherPub)
	assert.Nil(t, err)

	sign := func(k *ecdsa.PrivateKey, payer tokenswap.Address, expiry int64) p256vault.Authorization {
		auth, err := p256vault.Sign(k, payer, expiry)
		assert.Nil(t, err)
		return auth
	}
	withdraw := func(payer tokenswap.Address, pubkey []byte, auth p256vault.Authorization) tokenswap.Instruction {
		ix, err := p256vault.Withdraw(payer, pubkey, auth)
		assert.Nil(t, err)
		return ix
	}
	valid := func() p256vault.Authorization {
		return sign(key, bob.Address(), now.Add(time.Minute).Unix())
	}

	cases := map[string]struct {
		ix      func() tokenswap.Instruction
		wantErr *errors.Error
	}{
		"expired": {
			ix: func() tokenswap.Instruction {
				return withdraw(bob.Address(), pubkey, sign(key, bob.Address(), now.Unix()-1))
			},
			wantErr: p256vault.ErrExpired,
		},
		"authorization for another payer": {
			ix: func() tokenswap.Instruction {
				return withdraw(bob.Address(), pubkey, sign(key, alice.Address(), now.Add(time.Minute).Unix()))
			},
			wantErr: p256vault.ErrPayerMismatch,
		},
		"payer rewritten after signing": {
			ix: func() tokenswap.Instruction {
				auth := sign(key, alice.Address(), now.Add(time.Minute).Unix())
				auth.Payer = bob.Address()
				return withdraw(bob.Address(), pubkey, auth)
			},
			wantErr: p256vault.ErrSignature,
		},
		"expiry extended after signing": {
			ix: func() tokenswap.Instruction {
				auth := sign(key, bob.Address(), now.Unix()-1)
				auth.Expiry = now.Add(time.Hour).Unix()
				return withdraw(bob.Address(), pubkey, auth)
			},
			wantErr: p256vault.ErrSignature,
		},
		"signed by another key": {
			ix: func() tokenswap.Instruction {
				return withdraw(bob.Address(), pubkey, sign(other, bob.Address(), now.Add(time.Minute).Unix()))
			},
			wantErr: p256vault.ErrSignature,
		},
		"high s signature": {
			ix: func() tokenswap.Instruction {
				auth := valid()
				s := new(big.Int).SetBytes(auth.Signature[32:])
				s.Sub(elliptic.P256().Params().N, s)
				s.FillBytes(auth.Signature[32:])
				return withdraw(bob.Address(), pubkey, auth)
			},
			wantErr: p256vault.ErrSignature,
		},
		"vault of another key": {
			ix: func() tokenswap.Instruction {
				ix := withdraw(bob.Address(), pubkey, valid())
				ix.Accounts[1].Key = otherVault
				return ix
			},
			wantErr: errors.ErrInvalidInput,
		},
		"empty vault": {
			ix: func() tokenswap.Instruction {
				return withdraw(bob.Address(), otherPub, sign(other, bob.Address(), now.Unix()))
			},
			wantErr: vault.ErrVaultEmpty,
		},
		"truncated signature": {
			ix: func() tokenswap.Instruction {
				ix := withdraw(bob.Address(), pubkey, valid())
				ix.Data = ix.Data[:len(ix.Data)-1]
				return ix
			},
			wantErr: errors.ErrInvalidInput,
		},
		"payer did not sign": {
			ix: func() tokenswap.Instruction {
				ix := withdraw(alice.Address(), pubkey, sign(key, alice.Address(), now.Unix()))
				ix.Accounts[0].IsSigner = false
				return ix
			},
			wantErr: errors.ErrUnauthorized,
		},
		"wrong system program": {
			ix: func() tokenswap.Instruction {
				ix := withdraw(bob.Address(), pubkey, valid())
				ix.Accounts[2].Key = p256vault.ProgramID
				return ix
			},
			wantErr: errors.ErrProgram,
		},
		"unknown instruction": {
			ix: func() tokenswap.Instruction {
				ix := withdraw(bob.Address(), pubkey, valid())
				ix.Data[0] = 9
				return ix
			},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			before := l.Snapshot(alice.Address(), bob.Address(), v, otherVault)
			_, err := l.Exec(weavetest.Signers(bob), tc.ix())
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, before, l.Snapshot(alice.Address(), bob.Address(), v, otherVault))
		})
	}
}

func TestDepositErrors(t *testing.T) {
	l := weavetest.NewLedger(t)
	alice := l.Wallet("alice", 10000)
	pubkey := p256vault.CompressPublicKey(&newKey(t).PublicKey)

	// 0x05 is not a compressed point prefix.
	notOnCurve := append([]byte{0x05}, pubkey[1:]...)
	badVault, _, err := p256vault.Address(notOnCurve)
	assert.Nil(t, err)

	cases := map[string]struct {
		ix      func() tokenswap.Instruction
		wantErr *errors.Error
	}{
		"zero deposit": {
			ix:      func() tokenswap.Instruction { return mustDeposit(t, alice.Address(), pubkey, 0) },
			wantErr: errors.ErrInvalidAmount,
		},
		"invalid public key": {
			ix:      func() tokenswap.Instruction { return mustDeposit(t, alice.Address(), notOnCurve, 10) },
			wantErr: errors.ErrInvalidInput,
		},
		"insufficient lamports": {
			ix:      func() tokenswap.Instruction { return mustDeposit(t, alice.Address(), pubkey, 20000) },
			wantErr: errors.ErrInsufficientAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			v, _, err := p256vault.Address(pubkey)
			assert.Nil(t, err)
			before := l.Snapshot(alice.Address(), v, badVault)
			_, err = l.Exec(weavetest.Signers(alice), tc.ix())
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, before, l.Snapshot(alice.Address(), v, badVault))
		})
	}
}

func TestAuthorization(t *testing.T) {
	key := newKey(t)
	pubkey := p256vault.CompressPublicKey(&key.PublicKey)
	payer := weavetest.KeyFromName("payer").Address()

	auth, err := p256vault.Sign(key, payer, 1714564800)
	assert.Nil(t, err)
	assert.Equal(t, p256vault.SignatureLength, len(auth.Signature))
	assert.Equal(t, tokenswap.AddressLength+8, len(auth.Message()))
	assert.Nil(t, auth.Verify(pubkey))

	assert.IsErr(t, errors.ErrInvalidInput, auth.Verify(pubkey[:32]))
	short := auth
	short.Signature = auth.Signature[:63]
	assert.IsErr(t, p256vault.ErrSignature, short.Verify(pubkey))

	_, _, err = p256vault.Address(pubkey[1:])
	assert.IsErr(t, errors.ErrInvalidInput, err)
}
