package escrow

import (
	"sort"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/x/token"
)

// AccountReader gives read access to committed accounts. It is implemented
// by runtime.Ledger.
type AccountReader interface {
	Account(key tokenswap.Address) (*tokenswap.Account, error)
	AccountsByOwner(owner tokenswap.Address) ([]runtime.KeyedAccount, error)
}

// Offer is an active record together with the state of its vault.
type Offer struct {
	Address tokenswap.Address `json:"address"`
	Vault   tokenswap.Address `json:"vault"`
	Record
	// Deposit is the amount of the deposit mint held by the vault.
	Deposit uint64 `json:"deposit"`
}

// Lookup returns the offer stored under given record address. It fails
// with ErrRecordNotFound if the record is closed.
func Lookup(r AccountReader, record tokenswap.Address) (*Offer, error) {
	acc, err := r.Account(record)
	if err != nil {
		return nil, err
	}
	if LifecycleOf(acc) != Active {
		return nil, errors.Wrapf(ErrRecordNotFound, "%s", record)
	}
	rec, err := UnpackRecord(acc.Data)
	if err != nil {
		return nil, err
	}
	return describe(r, record, rec)
}

// LookupBySeed returns the offer a maker opened with given seed.
func LookupBySeed(r AccountReader, maker tokenswap.Address, seed uint64) (*Offer, error) {
	record, _, err := RecordAddress(maker, seed)
	if err != nil {
		return nil, err
	}
	return Lookup(r, record)
}

// ListByMaker returns all active offers of a maker, ordered by seed.
func ListByMaker(r AccountReader, maker tokenswap.Address) ([]*Offer, error) {
	accs, err := r.AccountsByOwner(ProgramID)
	if err != nil {
		return nil, err
	}
	var res []*Offer
	for _, a := range accs {
		if LifecycleOf(a.Account) != Active {
			continue
		}
		rec, err := UnpackRecord(a.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "record %s", a.Key)
		}
		if rec.Maker != maker {
			continue
		}
		o, err := describe(r, a.Key, rec)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Seed < res[j].Seed })
	return res, nil
}

func describe(r AccountReader, record tokenswap.Address, rec *Record) (*Offer, error) {
	vault, _, err := VaultAddress(rec.MintDeposit, record)
	if err != nil {
		return nil, err
	}
	acc, err := r.Account(vault)
	if err != nil {
		return nil, err
	}
	amount, err := token.Balance(acc)
	if err != nil {
		return nil, errors.Wrapf(err, "vault of %s", record)
	}
	return &Offer{Address: record, Vault: vault, Record: *rec, Deposit: amount}, nil
}
