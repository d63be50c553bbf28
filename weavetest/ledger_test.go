package weavetest

import (
	"testing"

	"github.com/iov-one/tokenswap/weavetest/assert"
	"github.com/iov-one/tokenswap/x/token"
)

func TestLedgerFixture(t *testing.T) {
	l := NewLedger(t)
	assert.Equal(t, ChainID, l.ChainID())
	assert.Equal(t, FaucetLamports, l.Lamports(l.Faucet.Address()))

	alice := l.Wallet("alice", 1000)
	assert.Equal(t, uint64(1000), l.Lamports(alice.Address()))
	assert.Equal(t, KeyFromName("alice").Address(), alice.Address())

	mint := l.CreateMint(alice.Address(), 3)
	holding := l.MintTo(mint, alice, alice.Address(), 7)
	assert.Equal(t, token.MustAssociatedAddress(alice.Address(), mint), holding)
	assert.Equal(t, uint64(7), l.Balance(holding))

	// Minting again reuses the holding.
	l.MintTo(mint, alice, alice.Address(), 3)
	assert.Equal(t, uint64(10), l.Balance(holding))

	assert.Equal(t, uint64(0), l.Balance(RandomAddr(t)))
}

func TestTxSignsOnce(t *testing.T) {
	l := NewLedger(t)
	alice := l.Wallet("alice", 1000)
	tx, err := l.Tx(Signers(alice, alice, l.Faucet))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(tx.Signatures))
}
