/*
Package std contains standard implementations of a number
of components.

It wires every program of this repository into a router and a
genesis initializer, and opens a ledger on a persistent store.
It is a good place to see how the various components fit together.
*/
package std

import (
	"path/filepath"
	"strings"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/store/iavl"
	"github.com/iov-one/tokenswap/x/escrow"
	"github.com/iov-one/tokenswap/x/p256vault"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
	"github.com/iov-one/tokenswap/x/vault"
)

// Programs returns all programs a standard ledger runs.
func Programs() []tokenswap.Program {
	return []tokenswap.Program{
		system.Program{},
		token.Program{},
		token.AssociatedProgram{},
		escrow.Program{},
		vault.Program{},
		p256vault.Program{},
	}
}

// Router returns a router dispatching to all standard programs.
func Router() *runtime.Router {
	r := runtime.NewRouter()
	for _, p := range Programs() {
		r.Register(p)
	}
	return r
}

// Initializer loads the genesis sections of all standard programs.
func Initializer() tokenswap.Initializer {
	return runtime.ChainInitializers(
		system.Initializer{},
		token.Initializer{},
	)
}

// Ledger opens a ledger with all standard programs on top of the store
// at dbPath. An empty path keeps everything in memory, which is only
// useful in tests.
func Ledger(dbPath string, opts ...runtime.Option) (*runtime.Ledger, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return nil, err
	}
	return runtime.NewLedger(kv, Router(), opts...)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (tokenswap.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name)
}

// InitLedger loads the genesis file into a fresh ledger.
func InitLedger(l *runtime.Ledger, genesisPath string) (tokenswap.CommitID, error) {
	gen, err := runtime.LoadGenesis(genesisPath)
	if err != nil {
		return tokenswap.CommitID{}, err
	}
	return l.InitChain(gen.ChainID, gen.AppState, Initializer())
}
