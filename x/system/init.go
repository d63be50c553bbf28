package system

import (
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const optKey = "system"

// GenesisAccount is used to parse the json from genesis file
type GenesisAccount struct {
	Address  tokenswap.Address `json:"address"`
	Lamports uint64            `json:"lamports"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ tokenswap.Initializer = Initializer{}

// FromGenesis credits the listed lamports to system owned accounts.
func (Initializer) FromGenesis(opts tokenswap.Options, accounts tokenswap.AccountStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s genesis: %s", optKey, err)
	}
	for i, g := range accts {
		if g.Address.IsZero() {
			return errors.Wrapf(errors.ErrEmpty, "account %d: address", i)
		}
		acc, err := accounts.GetAccount(g.Address)
		if err != nil {
			return err
		}
		if !acc.IsOwnedBy(tokenswap.SystemProgramID) {
			return errors.Wrapf(ErrNotSystemOwned, "%s", g.Address)
		}
		sum := acc.Lamports + g.Lamports
		if sum < acc.Lamports {
			return errors.Wrapf(errors.ErrOverflow, "%s lamports", g.Address)
		}
		acc.Lamports = sum
		if err := accounts.SetAccount(g.Address, acc); err != nil {
			return err
		}
	}
	return nil
}
