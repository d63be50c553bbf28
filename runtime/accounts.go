package runtime

import (
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
)

// AccountBucketName is where the ledger accounts are stored.
const AccountBucketName = "acct"

type accountModel struct {
	tokenswap.Account
}

var _ orm.Model = (*accountModel)(nil)

func (m *accountModel) Marshal() ([]byte, error) {
	return tokenswap.NewFieldWriter().
		Varint(1, m.Lamports).
		Bytes(2, m.Owner[:]).
		Bytes(3, m.Data).
		Result()
}

func (m *accountModel) Unmarshal(raw []byte) error {
	m.Account = tokenswap.Account{}
	r := tokenswap.NewFieldReader(raw)
	for r.More() {
		field, wire, err := r.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if err := tokenswap.Expect(field, wire, tokenswap.WireVarint); err != nil {
				return err
			}
			if m.Lamports, err = r.Varint(); err != nil {
				return err
			}
		case 2:
			if err := tokenswap.Expect(field, wire, tokenswap.WireBytes); err != nil {
				return err
			}
			b, err := r.Bytes()
			if err != nil {
				return err
			}
			if m.Owner, err = tokenswap.AddressFromBytes(b); err != nil {
				return err
			}
		case 3:
			if err := tokenswap.Expect(field, wire, tokenswap.WireBytes); err != nil {
				return err
			}
			if m.Data, err = r.Bytes(); err != nil {
				return err
			}
		default:
			return errors.Wrapf(errors.ErrInvalidModel, "unknown account field %d", field)
		}
	}
	return nil
}

func (m *accountModel) Validate() error {
	if m.Lamports == 0 {
		return errors.Wrap(errors.ErrInvalidModel, "account without lamports")
	}
	return nil
}

func ownerIndexer(key []byte, m orm.Model) ([]byte, error) {
	a, ok := m.(*accountModel)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidType, m)
	}
	return a.Owner.Bytes(), nil
}

// KeyedAccount is an account together with its address.
type KeyedAccount struct {
	Key tokenswap.Address
	*tokenswap.Account
}

// AccountBucket stores ledger accounts under their address, indexed by
// owner program.
type AccountBucket struct {
	orm.Bucket
}

// NewAccountBucket returns the bucket used by the ledger.
func NewAccountBucket() AccountBucket {
	b := orm.NewBucket(AccountBucketName, func() orm.Model { return &accountModel{} }).
		WithIndex("owner", ownerIndexer)
	return AccountBucket{Bucket: b}
}

// Get returns the account stored under key, or an empty system owned
// account if there is none.
func (b AccountBucket) Get(db tokenswap.ReadOnlyKVStore, key tokenswap.Address) (*tokenswap.Account, error) {
	var m accountModel
	switch err := b.One(db, key[:], &m); {
	case err == nil:
		return &m.Account, nil
	case errors.ErrNotFound.Is(err):
		return &tokenswap.Account{Owner: tokenswap.SystemProgramID}, nil
	default:
		return nil, err
	}
}

// Save stores the account. An account without lamports is removed.
func (b AccountBucket) Save(db tokenswap.KVStore, key tokenswap.Address, acc *tokenswap.Account) error {
	if acc.Lamports == 0 {
		if err := b.Delete(db, key[:]); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	return b.Put(db, key[:], &accountModel{Account: *acc})
}

// ByOwner returns all accounts owned by given program, ordered by address.
func (b AccountBucket) ByOwner(db tokenswap.ReadOnlyKVStore, owner tokenswap.Address) ([]KeyedAccount, error) {
	keys, err := b.KeysByIndex(db, "owner", owner[:])
	if err != nil {
		return nil, err
	}
	res := make([]KeyedAccount, 0, len(keys))
	for _, k := range keys {
		var m accountModel
		if err := b.One(db, k, &m); err != nil {
			return nil, errors.Wrap(err, "indexed account")
		}
		key, err := tokenswap.AddressFromBytes(k)
		if err != nil {
			return nil, err
		}
		res = append(res, KeyedAccount{Key: key, Account: &m.Account})
	}
	return res, nil
}

type accountStore struct {
	db     tokenswap.KVStore
	bucket AccountBucket
}

var _ tokenswap.AccountStore = accountStore{}

// NewAccountStore gives direct access to the accounts kept in db.
func NewAccountStore(db tokenswap.KVStore) tokenswap.AccountStore {
	return accountStore{db: db, bucket: NewAccountBucket()}
}

func (s accountStore) GetAccount(key tokenswap.Address) (*tokenswap.Account, error) {
	return s.bucket.Get(s.db, key)
}

func (s accountStore) SetAccount(key tokenswap.Address, acc *tokenswap.Account) error {
	return s.bucket.Save(s.db, key, acc)
}
