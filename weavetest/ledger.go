package weavetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/std"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
)

const (
	// ChainID is the chain every test ledger is initialized with.
	ChainID = "tokenswap-test"

	// FaucetLamports is the genesis balance of the faucet.
	FaucetLamports uint64 = 1 << 50
)

// Ledger is an in memory ledger running all standard programs, with a
// funded faucet that pays for fixtures.
type Ledger struct {
	*runtime.Ledger
	t      testing.TB
	Faucet *crypto.PrivateKey
}

// NewLedger returns an initialized ledger. Any failure aborts the test.
func NewLedger(t testing.TB, opts ...runtime.Option) *Ledger {
	t.Helper()

	l, err := std.Ledger("", opts...)
	if err != nil {
		t.Fatalf("cannot create ledger: %s", err)
	}
	faucet := KeyFromName("faucet")
	genesis := tokenswap.Options{
		"system": mustJSON(t, []system.GenesisAccount{
			{Address: faucet.Address(), Lamports: FaucetLamports},
		}),
	}
	if _, err := l.InitChain(ChainID, genesis, std.Initializer()); err != nil {
		t.Fatalf("cannot initialize ledger: %s", err)
	}
	return &Ledger{Ledger: l, t: t, Faucet: faucet}
}

func mustJSON(t testing.TB, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("cannot serialize %T: %s", v, err)
	}
	return raw
}

// Tx returns a transaction signed by all signers, each using its next
// sequence. A signer listed twice signs once.
func (l *Ledger) Tx(signers []crypto.Signer, ixs ...tokenswap.Instruction) (*runtime.Tx, error) {
	tx := runtime.NewTx(ixs...)
	seen := make(map[tokenswap.Address]bool)
	for _, s := range signers {
		addr := s.PublicKey().Address()
		if seen[addr] {
			continue
		}
		seen[addr] = true
		seq, err := l.NextNonce(addr)
		if err != nil {
			return nil, err
		}
		if err := tx.Sign(s, l.ChainID(), seq); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// Exec signs and submits instructions as a single transaction.
func (l *Ledger) Exec(signers []crypto.Signer, ixs ...tokenswap.Instruction) (*runtime.Result, error) {
	tx, err := l.Tx(signers, ixs...)
	if err != nil {
		return nil, err
	}
	return l.Submit(context.Background(), tx)
}

// MustExec is like Exec but fails the test on error.
func (l *Ledger) MustExec(signers []crypto.Signer, ixs ...tokenswap.Instruction) *runtime.Result {
	l.t.Helper()
	res, err := l.Exec(signers, ixs...)
	if err != nil {
		l.t.Fatalf("transaction failed: %+v", err)
	}
	return res
}

// Signers is a shortcut to build a signer list.
func Signers(keys ...*crypto.PrivateKey) []crypto.Signer {
	res := make([]crypto.Signer, len(keys))
	for i, k := range keys {
		res[i] = k
	}
	return res
}

// Fund transfers lamports from the faucet to addr.
func (l *Ledger) Fund(addr tokenswap.Address, lamports uint64) {
	l.t.Helper()
	l.MustExec(Signers(l.Faucet), system.Transfer(l.Faucet.Address(), addr, lamports))
}

// Wallet returns the key named name, funded with lamports.
func (l *Ledger) Wallet(name string, lamports uint64) *crypto.PrivateKey {
	l.t.Helper()
	key := KeyFromName(name)
	l.Fund(key.Address(), lamports)
	return key
}

// CreateMint creates and initializes a mint paid by the faucet.
func (l *Ledger) CreateMint(authority tokenswap.Address, decimals uint8) tokenswap.Address {
	l.t.Helper()
	mint := NewKey()
	l.MustExec(Signers(l.Faucet, mint),
		system.CreateAccount(l.Faucet.Address(), mint.Address(),
			l.Rent().MinimumBalance(token.MintLen), token.MintLen, token.ProgramID),
		token.InitializeMint(mint.Address(), authority, nil, decimals),
	)
	return mint.Address()
}

// MintTo mints amount into the associated token account of owner,
// creating that account when missing, and returns its address.
func (l *Ledger) MintTo(mint tokenswap.Address, authority crypto.Signer, owner tokenswap.Address, amount uint64) tokenswap.Address {
	l.t.Helper()
	ata := token.MustAssociatedAddress(owner, mint)
	l.MustExec([]crypto.Signer{l.Faucet, authority},
		token.CreateAssociated(l.Faucet.Address(), owner, mint, true),
		token.MintTo(mint, ata, authority.PublicKey().Address(), amount),
	)
	return ata
}

// Lamports returns the committed lamports of addr.
func (l *Ledger) Lamports(addr tokenswap.Address) uint64 {
	l.t.Helper()
	return l.MustAccount(addr).Lamports
}

// Balance returns the token amount of a holding, zero if it does not
// exist.
func (l *Ledger) Balance(holding tokenswap.Address) uint64 {
	l.t.Helper()
	acc := l.MustAccount(holding)
	if acc.IsEmpty() {
		return 0
	}
	amount, err := token.Balance(acc)
	if err != nil {
		l.t.Fatalf("%s is not a token account: %s", holding, err)
	}
	return amount
}

// MustAccount returns the committed state of addr.
func (l *Ledger) MustAccount(addr tokenswap.Address) *tokenswap.Account {
	l.t.Helper()
	acc, err := l.Account(addr)
	if err != nil {
		l.t.Fatalf("cannot load %s: %s", addr, err)
	}
	return acc
}

// Snapshot returns the committed state of all given accounts, in order.
func (l *Ledger) Snapshot(addrs ...tokenswap.Address) []*tokenswap.Account {
	l.t.Helper()
	res := make([]*tokenswap.Account, len(addrs))
	for i, a := range addrs {
		res[i] = l.MustAccount(a)
	}
	return res
}
