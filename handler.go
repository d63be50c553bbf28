package tokenswap

import (
	"encoding/json"
)

// Options are the genesis options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// AccountStore gives direct access to ledger accounts, bypassing programs.
// It is only used to load the genesis state.
type AccountStore interface {
	// GetAccount returns an empty system owned account if none is
	// stored under the key.
	GetAccount(key Address) (*Account, error)
	// SetAccount stores the account. An empty account is removed.
	SetAccount(key Address, acc *Account) error
}

// Initializer implementations are used to initialize
// programs from genesis file contents
type Initializer interface {
	FromGenesis(Options, AccountStore) error
}
