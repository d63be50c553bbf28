package store

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"sort"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/weavetest/assert"
)

/*
TestSuite runs the same checks against every CacheableKVStore
implementation. btree_test.go and iavl/adapter_test.go only provide the
constructor of the base layer.

A cache wrap over the base plays the part of a single transaction: the
ledger writes it when every instruction succeeded and discards it
otherwise. Entries are accounts stored under the "acct:" prefix, with
lamports and owner as the value.
*/
type TestSuite struct {
	makeBase TestStoreConstructor
}

type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

const accountPrefix = "acct:"

var tokenProgram = tokenswap.ProgramAddress("token")

// TxLifecycle checks what a transaction sees of the committed accounts
// and that only a written transaction changes them.
func (s *TestSuite) TxLifecycle(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	alice, bob, carol := accountKey(), accountKey(), accountKey()
	s.AssertGetHas(t, base, alice, nil, false)
	assert.Nil(t, base.Set(alice, accountValue(1000, tokenswap.SystemProgramID)))
	assert.Nil(t, base.Set(bob, accountValue(500, tokenswap.SystemProgramID)))

	// A failed transfer to a new account leaves no trace.
	failed := base.CacheWrap()
	assert.Nil(t, failed.Set(alice, accountValue(600, tokenswap.SystemProgramID)))
	assert.Nil(t, failed.Set(carol, accountValue(400, tokenswap.SystemProgramID)))
	s.AssertGetHas(t, failed, carol, accountValue(400, tokenswap.SystemProgramID), true)
	s.AssertGetHas(t, base, carol, nil, false)
	failed.Discard()
	s.AssertGetHas(t, base, alice, accountValue(1000, tokenswap.SystemProgramID), true)
	s.AssertGetHas(t, base, carol, nil, false)

	// A transaction sees committed accounts and its own changes, the base
	// only sees them once written.
	tx := base.CacheWrap()
	s.AssertGetHas(t, tx, bob, accountValue(500, tokenswap.SystemProgramID), true)
	assert.Nil(t, tx.Set(alice, accountValue(1500, tokenswap.SystemProgramID)))
	assert.Nil(t, tx.Delete(bob))
	s.AssertGetHas(t, tx, bob, nil, false)
	s.AssertGetHas(t, base, bob, accountValue(500, tokenswap.SystemProgramID), true)
	assert.Nil(t, tx.Write())

	s.AssertGetHas(t, base, alice, accountValue(1500, tokenswap.SystemProgramID), true)
	s.AssertGetHas(t, base, bob, nil, false)

	// An account closed by an earlier transaction can be opened again.
	reopen := base.CacheWrap()
	assert.Nil(t, reopen.Set(bob, accountValue(1, tokenProgram)))
	assert.Nil(t, reopen.Write())
	s.AssertGetHas(t, base, bob, accountValue(1, tokenProgram), true)
}

// ConflictingWrites checks that a transaction overrides committed values
// and that writing it leaves the base in the state the transaction saw.
func (s *TestSuite) ConflictingWrites(t *testing.T) {
	alice, bob, carol := accountKey(), accountKey(), accountKey()
	v := randKeys(4, 40)

	cases := map[string]struct {
		committed []Op
		tx        []Op
		// Key is what we query, Value is what we expect
		baseWant []Model
		txWant   []Model
	}{
		"debit one, close another, open a third": {
			committed: []Op{SetOp(alice, v[0]), SetOp(bob, v[1])},
			tx:        []Op{SetOp(alice, v[2]), DelOp(bob), SetOp(carol, v[3])},
			baseWant:  []Model{Pair(alice, v[0]), Pair(bob, v[1]), Pair(carol, nil)},
			txWant:    []Model{Pair(alice, v[2]), Pair(bob, nil), Pair(carol, v[3])},
		},
		"close and reopen in one transaction": {
			committed: []Op{SetOp(alice, v[0])},
			tx:        []Op{DelOp(alice), SetOp(alice, v[1])},
			baseWant:  []Model{Pair(alice, v[0])},
			txWant:    []Model{Pair(alice, v[1])},
		},
		"open and close in one transaction": {
			tx:       []Op{SetOp(carol, v[0]), DelOp(carol)},
			baseWant: []Model{Pair(carol, nil)},
			txWant:   []Model{Pair(carol, nil)},
		},
		"close an account that never existed": {
			committed: []Op{SetOp(alice, v[0])},
			tx:        []Op{DelOp(bob)},
			baseWant:  []Model{Pair(alice, v[0]), Pair(bob, nil)},
			txWant:    []Model{Pair(alice, v[0]), Pair(bob, nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.committed {
				assert.Nil(t, op.Apply(base))
			}
			tx := base.CacheWrap()
			for _, op := range tc.tx {
				assert.Nil(t, op.Apply(tx))
			}

			for _, q := range tc.baseWant {
				s.AssertGetHas(t, base, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.txWant {
				s.AssertGetHas(t, tx, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, tx.Write())
			for _, q := range tc.txWant {
				s.AssertGetHas(t, base, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// RangeScan iterates over many accounts spread over the committed state
// and a pending transaction, in both directions and with every kind of
// limit.
func (s *TestSuite) RangeScan(t *testing.T) {
	const (
		size   = 50
		closed = 20
	)

	opened := accountModels(size)
	txOps := append(setOps(opened...), delOps(accountModels(closed)...)...)
	onlyTx := sortModels(opened)

	committed := accountModels(size)
	committedOps := append(setOps(committed...), delOps(accountModels(closed)...)...)
	both := sortModels(append(opened, committed...))

	cases := map[string]scanCase{
		"accounts opened by the transaction": {
			tx: txOps,
			scans: []scan{
				{nil, nil, false, onlyTx},
				{onlyTx[10].Key, nil, false, onlyTx[10:]},
				{nil, onlyTx[size-8].Key, false, onlyTx[:size-8]},
				{onlyTx[17].Key, onlyTx[28].Key, false, onlyTx[17:28]},

				{nil, nil, true, reverse(onlyTx)},
				{onlyTx[34].Key, nil, true, reverse(onlyTx[34:])},
				{nil, onlyTx[19].Key, true, reverse(onlyTx[:19])},
				{onlyTx[6].Key, onlyTx[26].Key, true, reverse(onlyTx[6:26])},
			},
		},
		"committed and pending accounts": {
			committed: committedOps,
			tx:        txOps,
			scans: []scan{
				{nil, nil, false, both},
				{both[10].Key, nil, false, both[10:]},
				{nil, both[size-8].Key, false, both[:size-8]},
				{both[17].Key, both[78].Key, false, both[17:78]},

				{nil, nil, true, reverse(both)},
				{both[34].Key, nil, true, reverse(both[34:])},
				{nil, both[69].Key, true, reverse(both[:69])},
				{both[6].Key, both[26].Key, true, reverse(both[6:26])},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// ScanEdgeCases covers overrides and deletes that fall exactly on the
// keys where a scan starts or ends.
func (s *TestSuite) ScanEdgeCases(t *testing.T) {
	ms := accountModels(6)
	a, a2, b, b2, c, d := ms[0], ms[1], ms[2], ms[3], ms[4], ms[5]
	// a2 and b2 are new states of a and b
	a2.Key = a.Key
	b2.Key = b.Key

	abc := sortModels([]Model{a, b, c})
	updated := sortModels([]Model{a2, b2, c, d})

	cases := map[string]scanCase{
		"pending accounts only": {
			tx: setOps(a, b, c),
			scans: []scan{
				{nil, nil, false, abc},
				{abc[1].Key, abc[2].Key, false, abc[1:2]},
				{nil, nil, true, reverse(abc)},
			},
		},
		"committed accounts only": {
			committed: setOps(a, b, c),
			scans: []scan{
				{nil, nil, false, abc},
				{abc[1].Key, abc[2].Key, false, abc[1:2]},
				{nil, nil, true, reverse(abc)},
			},
		},
		"committed and pending accounts": {
			committed: setOps(a, b),
			tx:        setOps(c),
			scans: []scan{
				{nil, nil, false, abc},
				{abc[1].Key, abc[2].Key, false, abc[1:2]},
				{nil, nil, true, reverse(abc)},
			},
		},
		"pending state replaces the committed one": {
			committed: setOps(a, b, c),
			tx:        setOps(a2, b2, d),
			scans: []scan{
				{nil, nil, false, updated},
				{updated[1].Key, updated[3].Key, false, updated[1:3]},
				{nil, nil, true, reverse(updated)},
			},
		},
		"closed accounts are skipped": {
			committed: setOps(a, c, d),
			tx:        delOps(a, b, d),
			scans: []scan{
				{nil, nil, false, []Model{c}},
				{nil, nil, true, []Model{c}},
				// the only open account is the exclusive end
				{nil, c.Key, false, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

//nolint
func randBytes(length int) []byte {
	res := make([]byte, length)
	rand.Read(res)
	return res
}

// randKeys returns a slice of count keys, all of a given size
func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = randBytes(size)
	}
	return res
}

// accountKey returns the store key of a random account address.
func accountKey() []byte {
	return append([]byte(accountPrefix), randBytes(tokenswap.AddressLength)...)
}

// accountValue encodes the lamports and the owner of an account.
func accountValue(lamports uint64, owner tokenswap.Address) []byte {
	res := make([]byte, 8, 8+tokenswap.AddressLength)
	binary.BigEndian.PutUint64(res, lamports)
	return append(res, owner[:]...)
}

// accountModels returns count random accounts owned by random programs.
func accountModels(count int) []Model {
	res := make([]Model, count)
	for i := range res {
		var owner tokenswap.Address
		copy(owner[:], randBytes(tokenswap.AddressLength))
		res[i] = Pair(accountKey(), accountValue(uint64(i+1), owner))
	}
	return res
}

// scanCase applies committed to the base, tx to a cache wrap over it and
// runs every scan against the cache wrap.
type scanCase struct {
	committed []Op
	tx        []Op
	scans     []scan
}

func (c scanCase) verify(t testing.TB, base CacheableKVStore) {
	t.Helper()
	for _, op := range c.committed {
		assert.Nil(t, op.Apply(base))
	}
	tx := base.CacheWrap()
	for _, op := range c.tx {
		assert.Nil(t, op.Apply(tx))
	}

	for _, q := range c.scans {
		var iter Iterator
		var err error
		if q.reverse {
			iter, err = tx.ReverseIterator(q.start, q.end)
		} else {
			iter, err = tx.Iterator(q.start, q.end)
		}
		assert.Nil(t, err)

		for i, want := range q.want {
			key, value, err := iter.Next()
			assert.Nil(t, err)
			if !bytes.Equal(want.Key, key) {
				t.Fatalf("want key %d to be %X, got %X", i, want.Key, key)
			}
			assert.Equal(t, want.Value, value)
		}
		_, _, err = iter.Next()
		if !errors.ErrIteratorDone.Is(err) {
			t.Fatalf("want ErrIteratorDone, got %+v", err)
		}
		iter.Release()
	}
}

// scan is a range query and its expected result.
type scan struct {
	start   []byte
	end     []byte
	reverse bool
	want    []Model
}

// reverse returns a copy of the slice with elements in reverse order
func reverse(models []Model) []Model {
	max := len(models)
	res := make([]Model, max)
	for i := 0; i < max; i++ {
		res[i] = models[max-1-i]
	}
	return res
}

// sortModels returns a copy of the models sorted by key
func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func setOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func delOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
