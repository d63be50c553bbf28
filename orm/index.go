package orm

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const indexPrefix = "_i."

// index stores one db entry per indexed entity, composed of the length
// prefixed index value followed by the primary key. This allows to list all
// entities for a value with a single prefix iteration.
type index struct {
	prefix  []byte
	indexer Indexer
}

func newIndex(name string, indexer Indexer) index {
	return index{
		prefix:  []byte(indexPrefix + name + ":"),
		indexer: indexer,
	}
}

func (i index) valuePrefix(value []byte) []byte {
	out := make([]byte, len(i.prefix)+2+len(value))
	copy(out, i.prefix)
	binary.BigEndian.PutUint16(out[len(i.prefix):], uint16(len(value)))
	copy(out[len(i.prefix)+2:], value)
	return out
}

func (i index) entry(value, key []byte) []byte {
	return append(i.valuePrefix(value), key...)
}

func (i index) value(key []byte, m Model) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	v, err := i.indexer(key, m)
	if err != nil {
		return nil, errors.Wrap(err, "indexer")
	}
	if len(v) > 0xffff {
		return nil, errors.Wrapf(ErrInvalidIndex, "value of %d bytes", len(v))
	}
	return v, nil
}

// update moves the index entry of the entity stored under key. prev is nil
// on insert and next is nil on delete.
func (i index) update(db tokenswap.KVStore, key []byte, prev, next Model) error {
	before, err := i.value(key, prev)
	if err != nil {
		return err
	}
	after, err := i.value(key, next)
	if err != nil {
		return err
	}
	if prev != nil && next != nil && bytes.Equal(before, after) {
		return nil
	}
	if before != nil {
		if err := db.Delete(i.entry(before, key)); err != nil {
			return errors.Wrap(err, "remove index entry")
		}
	}
	if after != nil {
		if err := db.Set(i.entry(after, key), []byte{1}); err != nil {
			return errors.Wrap(err, "store index entry")
		}
	}
	return nil
}

func (i index) keys(db tokenswap.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix := i.valuePrefix(value)
	it, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create iterator")
	}
	defer it.Release()

	var res [][]byte
	for {
		k, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "iterator")
		}
		res = append(res, append([]byte(nil), k[len(prefix):]...))
	}
}
