package store

import (
	"testing"

	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/weavetest/assert"
)

func makeBase() (CacheableKVStore, func()) {
	// devnull is a black hole... just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()
	return base, func() {}
}

var suite = NewTestSuite(makeBase)

func TestBTreeCacheTxLifecycle(t *testing.T) { suite.TxLifecycle(t) }

func TestBTreeCacheConflictingWrites(t *testing.T) { suite.ConflictingWrites(t) }

func TestBTreeCacheRangeScan(t *testing.T) { suite.RangeScan(t) }

func TestBTreeCacheScanEdgeCases(t *testing.T) { suite.ScanEdgeCases(t) }

// TestBTreeDiscardLeavesParent makes sure a discarded cache never reaches
// the parent, which is what transaction atomicity is built on.
func TestBTreeDiscardLeavesParent(t *testing.T) {
	base, ops := LogableStore()
	assert.Nil(t, base.Set([]byte("a"), []byte("1")))

	cache := base.CacheWrap()
	assert.Nil(t, cache.Set([]byte("a"), []byte("2")))
	assert.Nil(t, cache.Set([]byte("b"), []byte("3")))
	cache.Discard()

	suite.AssertGetHas(t, base, []byte("a"), []byte("1"), true)
	suite.AssertGetHas(t, base, []byte("b"), nil, false)
	assert.Equal(t, 1, len(ops.ShowOps()))

	cache = base.CacheWrap()
	assert.Nil(t, cache.Delete([]byte("a")))
	assert.Nil(t, cache.Write())
	suite.AssertGetHas(t, base, []byte("a"), nil, false)

	got := ops.ShowOps()
	assert.Equal(t, 2, len(got))
	if got[1].IsSetOp() {
		t.Fatal("want a delete operation")
	}
	assert.Equal(t, []byte("a"), got[1].Key())
}

func TestSliceIterator(t *testing.T) {
	const size = 10

	ks := randKeys(size, 8)
	vs := randKeys(size, 40)

	models := make([]Model, size)
	for i := 0; i < size; i++ {
		models[i] = Pair(ks[i], vs[i])
	}

	it := NewSliceIterator(models)
	for i := 0; i < size; i++ {
		key, value, err := it.Next()
		assert.Nil(t, err)
		assert.Equal(t, ks[i], key)
		assert.Equal(t, vs[i], value)
	}
	_, _, err := it.Next()
	assert.IsErr(t, errors.ErrIteratorDone, err)

	it = NewSliceIterator(models)
	it.Release()
	_, _, err = it.Next()
	assert.IsErr(t, errors.ErrIteratorDone, err)
}

func TestCacheIteratorRelease(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("A")))
	cache := db.CacheWrap()

	it, err := cache.ReverseIterator([]byte("a"), []byte("z"))
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	// Release must be a synchronous operation.
	it.Release()
	assert.Nil(t, db.Delete([]byte("a")))
}

// countingStore counts the items read from its iterators.
type countingStore struct {
	CacheableKVStore
	reads *int
}

func (c countingStore) Iterator(start, end []byte) (Iterator, error) {
	it, err := c.CacheableKVStore.Iterator(start, end)
	return countingIter{Iterator: it, reads: c.reads}, err
}

func (c countingStore) ReverseIterator(start, end []byte) (Iterator, error) {
	it, err := c.CacheableKVStore.ReverseIterator(start, end)
	return countingIter{Iterator: it, reads: c.reads}, err
}

type countingIter struct {
	Iterator
	reads *int
}

func (c countingIter) Next() ([]byte, []byte, error) {
	*c.reads++
	return c.Iterator.Next()
}

func TestCacheIteratorReadsParentLazily(t *testing.T) {
	var reads int
	parent := countingStore{CacheableKVStore: MemStore(), reads: &reads}
	for i := byte(0); i < 100; i++ {
		assert.Nil(t, parent.Set([]byte{'k', i}, []byte{i}))
	}
	cache := NewBTreeCacheWrap(parent, NewNonAtomicBatch(parent), nil)
	assert.Nil(t, cache.Delete([]byte{'k', 1}))
	assert.Nil(t, cache.Set([]byte{'k', 2}, []byte("two")))

	cases := map[string]struct {
		reverse bool
		want    []Model
	}{
		"ascending": {
			want: []Model{Pair([]byte{'k', 0}, []byte{0}), Pair([]byte{'k', 2}, []byte("two")), Pair([]byte{'k', 3}, []byte{3})},
		},
		"descending": {
			reverse: true,
			want:    []Model{Pair([]byte{'k', 99}, []byte{99}), Pair([]byte{'k', 98}, []byte{98}), Pair([]byte{'k', 97}, []byte{97})},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			reads = 0
			var it Iterator
			var err error
			if tc.reverse {
				it, err = cache.ReverseIterator(nil, nil)
			} else {
				it, err = cache.Iterator(nil, nil)
			}
			assert.Nil(t, err)
			defer it.Release()

			for _, want := range tc.want {
				key, value, err := it.Next()
				assert.Nil(t, err)
				assert.Equal(t, want.Key, key)
				assert.Equal(t, want.Value, value)
			}
			// one item is read ahead, plus the overwritten and the
			// deleted parent entries when ascending
			if reads > len(tc.want)+3 {
				t.Fatalf("read %d parent items for %d results", reads, len(tc.want))
			}
		})
	}
}
