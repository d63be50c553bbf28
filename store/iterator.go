package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/tokenswap/errors"
)

// collectBtree returns all cached items within [start, end) in ascending
// order. nil start or end means no limit.
func collectBtree(bt *btree.BTree, start, end []byte) []keyer {
	var res []keyer
	insert := func(item btree.Item) bool {
		res = append(res, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(bkey{end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, insert)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, insert)
	}
	return res
}

func reverseItems(items []keyer) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

// mergeIter joins the parent iterator with the items cached in a
// BTreeCacheWrap. The parent is read one item at a time. A cached item
// always overwrites the parent value and a cached delete hides it.
//
// cached must be sorted in the direction of the parent iterator.
type mergeIter struct {
	parent Iterator
	cached []keyer
	desc   bool

	// next unread item of the parent
	key, value []byte
	hasParent  bool
}

var _ Iterator = (*mergeIter)(nil)

func newMergeIter(parent Iterator, cached []keyer, desc bool) (*mergeIter, error) {
	it := &mergeIter{parent: parent, cached: cached, desc: desc}
	if err := it.advance(); err != nil {
		parent.Release()
		return nil, err
	}
	return it, nil
}

// advance reads the next item of the parent.
func (i *mergeIter) advance() error {
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.key, i.value, i.hasParent = key, value, true
		return nil
	case errors.ErrIteratorDone.Is(err):
		i.key, i.value, i.hasParent = nil, nil, false
		return nil
	default:
		return errors.Wrap(err, "parent iterator")
	}
}

// Next implements Iterator.
func (i *mergeIter) Next() (key, value []byte, err error) {
	for i.hasParent || len(i.cached) > 0 {
		var cmp int
		switch {
		case !i.hasParent:
			cmp = 1
		case len(i.cached) == 0:
			cmp = -1
		default:
			cmp = bytes.Compare(i.key, i.cached[0].Key())
			if i.desc {
				cmp = -cmp
			}
		}

		if cmp < 0 {
			key, value = i.key, i.value
			if err := i.advance(); err != nil {
				return nil, nil, err
			}
			return key, value, nil
		}
		if cmp == 0 {
			if err := i.advance(); err != nil {
				return nil, nil, err
			}
		}
		item := i.cached[0]
		i.cached = i.cached[1:]
		if s, ok := item.(setItem); ok {
			return s.key, s.value, nil
		}
	}
	return nil, nil, errors.ErrIteratorDone
}

// Release implements Iterator.
func (i *mergeIter) Release() {
	i.parent.Release()
	i.cached = nil
}
