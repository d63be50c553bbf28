package tokenswap

import (
	"context"

	"github.com/iov-one/tokenswap/errors"
)

// Program is a stateless piece of logic executed by the ledger. All state
// it reads and writes is passed in as accounts.
type Program interface {
	// ID returns the address the program is registered under.
	ID() Address
	// Process executes a single instruction. On error the whole
	// transaction is discarded.
	Process(ctx context.Context, info BlockInfo, inv Invoker, accounts []*AccountInfo, data []byte) error
}

// Invoker allows a program to call another program during its execution.
// accounts must contain every account the instruction references. Each
// element of signerSeeds is a seed set of an address derived from the
// calling program that is granted a signature for this call.
type Invoker interface {
	Invoke(ctx context.Context, ix Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

// Registry is an interface to register your program,
// the setup side of a Router
type Registry interface {
	Register(p Program)
}

// RequireAccounts returns an error if fewer than n accounts were provided.
func RequireAccounts(accounts []*AccountInfo, n int) error {
	if len(accounts) < n {
		return errors.Wrapf(errors.ErrNotEnoughAccounts, "want %d, got %d", n, len(accounts))
	}
	return nil
}
