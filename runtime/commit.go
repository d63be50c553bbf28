package runtime

import (
	"encoding/json"
	"io"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed tokenswap.CommitKVStore
	deliver   tokenswap.KVCacheWrap
	check     tokenswap.KVCacheWrap
}

// NewCommitStore loads the latest version of the store and sets up the
// deliver and check caches.
func NewCommitStore(store tokenswap.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}, nil
}

// Close closes the committed store if it holds resources.
func (cs *CommitStore) Close() error {
	if c, ok := cs.committed.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (tokenswap.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it
// to disk. It then regenerates new deliver/check caches
func (cs *CommitStore) Commit() (tokenswap.CommitID, error) {
	// flush deliver to store and discard check
	if err := cs.deliver.Write(); err != nil {
		return tokenswap.CommitID{}, err
	}
	cs.check.Discard()

	// write the store to disk
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	// set up new caches
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used for
// simulation. Nothing written to it is ever committed.
func (cs *CommitStore) CheckStore() tokenswap.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() tokenswap.CacheableKVStore {
	return cs.deliver
}

// _ts: is a prefix for ledger internal data
const (
	chainIDKey = "_ts:chainID"
	rentKey    = "_ts:rent"
)

// loadChainID returns the chain id stored if any
func loadChainID(kv tokenswap.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv tokenswap.KVStore, chainID string) error {
	if !tokenswap.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}

// loadRent returns the stored rent, or the default one if genesis did not
// set any.
func loadRent(kv tokenswap.ReadOnlyKVStore) (tokenswap.Rent, error) {
	raw, err := kv.Get([]byte(rentKey))
	if err != nil {
		return tokenswap.Rent{}, errors.Wrap(err, "load rent")
	}
	if raw == nil {
		return tokenswap.DefaultRent, nil
	}
	var r tokenswap.Rent
	if err := json.Unmarshal(raw, &r); err != nil {
		return tokenswap.Rent{}, errors.Wrapf(errors.ErrInvalidModel, "rent: %s", err)
	}
	return r, nil
}

func saveRent(kv tokenswap.KVStore, r tokenswap.Rent) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshal rent")
	}
	return kv.Set([]byte(rentKey), raw)
}
