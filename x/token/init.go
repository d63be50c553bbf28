package token

import (
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const optKey = "token"

// GenesisMint is used to parse the json from genesis file
type GenesisMint struct {
	Address   tokenswap.Address `json:"address"`
	Authority tokenswap.Address `json:"authority"`
	Decimals  uint8             `json:"decimals"`
}

// GenesisHolding is a token account created at genesis.
type GenesisHolding struct {
	Address tokenswap.Address `json:"address"`
	Mint    tokenswap.Address `json:"mint"`
	Owner   tokenswap.Address `json:"owner"`
	Amount  uint64            `json:"amount"`
}

// GenesisState is the content of the token genesis section.
type GenesisState struct {
	Mints    []GenesisMint    `json:"mints"`
	Holdings []GenesisHolding `json:"holdings"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ tokenswap.Initializer = Initializer{}

// FromGenesis creates the listed mints and token accounts, funded with
// their storage deposits. A holding without an address is created at the
// associated address of its owner. Supply of every mint is the sum of its
// genesis holdings.
func (Initializer) FromGenesis(opts tokenswap.Options, accounts tokenswap.AccountStore) error {
	var state GenesisState
	if err := opts.ReadOptions(optKey, &state); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s genesis: %s", optKey, err)
	}
	rent := tokenswap.DefaultRent
	if err := opts.ReadOptions("rent", &rent); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "rent: %s", err)
	}

	mints := make(map[tokenswap.Address]*Mint, len(state.Mints))
	for i, g := range state.Mints {
		if g.Address.IsZero() {
			return errors.Wrapf(errors.ErrEmpty, "mint %d: address", i)
		}
		if _, ok := mints[g.Address]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "mint %s", g.Address)
		}
		authority := g.Authority
		mints[g.Address] = &Mint{MintAuthority: &authority, Decimals: g.Decimals, IsInitialized: true}
	}

	for i, g := range state.Holdings {
		m, ok := mints[g.Mint]
		if !ok {
			return errors.Wrapf(errors.ErrNotFound, "holding %d: mint %s", i, g.Mint)
		}
		addr := g.Address
		if addr.IsZero() {
			var err error
			if addr, _, err = AssociatedAddress(g.Owner, g.Mint); err != nil {
				return err
			}
		}
		supply := m.Supply + g.Amount
		if supply < m.Supply {
			return errors.Wrapf(errors.ErrOverflow, "supply of %s", g.Mint)
		}
		m.Supply = supply
		a := &Account{Mint: g.Mint, Owner: g.Owner, Amount: g.Amount, State: StateInitialized}
		data := make([]byte, AccountLen)
		a.Pack(data)
		if err := create(accounts, addr, data, rent); err != nil {
			return errors.Wrapf(err, "holding %d", i)
		}
	}

	for _, g := range state.Mints {
		data := make([]byte, MintLen)
		mints[g.Address].Pack(data)
		if err := create(accounts, g.Address, data, rent); err != nil {
			return errors.Wrapf(err, "mint %s", g.Address)
		}
	}
	return nil
}

func create(accounts tokenswap.AccountStore, key tokenswap.Address, data []byte, rent tokenswap.Rent) error {
	acc, err := accounts.GetAccount(key)
	if err != nil {
		return err
	}
	if !acc.IsEmpty() {
		return errors.Wrapf(errors.ErrAccountInUse, "%s", key)
	}
	return accounts.SetAccount(key, &tokenswap.Account{
		Lamports: rent.MinimumBalance(len(data)),
		Owner:    ProgramID,
		Data:     data,
	})
}
