//nolint
package store

import "github.com/iov-one/tokenswap"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = tokenswap.ReadOnlyKVStore
	SetDeleter       = tokenswap.SetDeleter
	KVStore          = tokenswap.KVStore
	Batch            = tokenswap.Batch
	Iterator         = tokenswap.Iterator
	CacheableKVStore = tokenswap.CacheableKVStore
	KVCacheWrap      = tokenswap.KVCacheWrap
	CommitKVStore    = tokenswap.CommitKVStore
	CommitID         = tokenswap.CommitID
)

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
