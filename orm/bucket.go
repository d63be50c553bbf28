/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary index, and may possess secondary indexes.
* Easy queries for one and iteration.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a generic holder that stores data as well
// as references to secondary indexes.
//
// This is a generic building block that should generally
// be embedded in a type-safe wrapper to ensure all data
// is the same type.
type Bucket struct {
	name    string
	prefix  []byte
	build   func() Model
	indexes map[string]index
}

// NewBucket creates a bucket to store data. build must return a new,
// empty instance of the stored model.
func NewBucket(name string, build func() Model) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		build:  build,
	}
}

// Name returns the bucket name.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consequetive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// One query the database for a single model instance. Result is loaded into
// given destination model.
// This method returns ErrNotFound if the entity does not exist in the
// database.
func (b Bucket) One(db tokenswap.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

// Has returns true if an entity is stored under given key.
func (b Bucket) Has(db tokenswap.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put saves given model in the database.
func (b Bucket) Put(db tokenswap.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot marshal: %s", err)
	}
	if err := b.updateIndexes(db, key, m); err != nil {
		return err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (b Bucket) Delete(db tokenswap.KVStore, key []byte) error {
	ok, err := b.Has(db, key)
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s:%X", b.name, key)
	}
	if err := b.updateIndexes(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// Iterate calls fn for every entity of the bucket in key order. Iteration
// stops on the first error returned by fn.
func (b Bucket) Iterate(db tokenswap.ReadOnlyKVStore, fn func(key []byte, m Model) error) error {
	it, err := db.Iterator(prefixRange(b.prefix))
	if err != nil {
		return errors.Wrap(err, "cannot create iterator")
	}
	defer it.Release()

	for {
		dbkey, raw, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "iterator")
		}
		m := b.build()
		if err := m.Unmarshal(raw); err != nil {
			return errors.Wrapf(errors.ErrInvalidModel, "cannot unmarshal: %s", err)
		}
		if err := fn(dbkey[len(b.prefix):], m); err != nil {
			return err
		}
	}
}

// WithIndex returns a copy of this bucket with given index,
// panics if it an index with that name is already registered.
//
// Designed to be chained.
func (b Bucket) WithIndex(name string, indexer Indexer) Bucket {
	// no duplicate indexes! (panic on init)
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	indexes := make(map[string]index, len(b.indexes)+1)
	for n, i := range b.indexes {
		indexes[n] = i
	}
	indexes[name] = newIndex(b.name+"_"+name, indexer)
	b.indexes = indexes
	return b
}

// KeysByIndex returns the primary keys of all entities indexed under value.
func (b Bucket) KeysByIndex(db tokenswap.ReadOnlyKVStore, name string, value []byte) ([][]byte, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrap(ErrInvalidIndex, name)
	}
	return idx.keys(db, value)
}

func (b Bucket) updateIndexes(db tokenswap.KVStore, key []byte, next Model) error {
	if len(b.indexes) == 0 {
		return nil
	}
	var prev Model
	p := b.build()
	switch err := b.One(db, key, p); {
	case err == nil:
		prev = p
	case errors.ErrNotFound.Is(err):
	default:
		return err
	}
	for _, idx := range b.indexes {
		if err := idx.update(db, key, prev, next); err != nil {
			return err
		}
	}
	return nil
}

// prefixRange turns a prefix into (start, end) to create
// and iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed?....
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
