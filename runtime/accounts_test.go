package runtime

import (
	"bytes"
	"sort"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/store/iavl"
	"github.com/iov-one/tokenswap/weavetest/assert"
)

func newMemStore() tokenswap.KVStore {
	return store.MemStore()
}

func TestAccountBucket(t *testing.T) {
	db := newMemStore()
	b := NewAccountBucket()
	prog := tokenswap.ProgramAddress("demo")

	missing, err := b.Get(db, tokenswap.Address{1})
	assert.Nil(t, err)
	assert.Equal(t, true, missing.IsEmpty())
	assert.Equal(t, tokenswap.SystemProgramID, missing.Owner)

	owned := &tokenswap.Account{Lamports: 10, Owner: prog, Data: []byte{1, 2}}
	assert.Nil(t, b.Save(db, tokenswap.Address{2}, owned))
	assert.Nil(t, b.Save(db, tokenswap.Address{3}, &tokenswap.Account{Lamports: 5, Owner: prog}))
	assert.Nil(t, b.Save(db, tokenswap.Address{4}, &tokenswap.Account{Lamports: 5}))

	got, err := b.Get(db, tokenswap.Address{2})
	assert.Nil(t, err)
	assert.Equal(t, owned, got)

	byOwner, err := b.ByOwner(db, prog)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(byOwner))
	assert.Equal(t, tokenswap.Address{2}, byOwner[0].Key)
	assert.Equal(t, tokenswap.Address{3}, byOwner[1].Key)

	// Zero lamports remove the account and its index entry.
	assert.Nil(t, b.Save(db, tokenswap.Address{2}, &tokenswap.Account{Owner: prog, Data: []byte{1, 2}}))
	byOwner, err = b.ByOwner(db, prog)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(byOwner))

	// Deleting an account that never existed is fine.
	assert.Nil(t, b.Save(db, tokenswap.Address{9}, &tokenswap.Account{}))
}

// TestAccountBucketInTransaction lists accounts by owner inside a cache
// wrap, where committed index entries are merged with pending ones.
func TestAccountBucketInTransaction(t *testing.T) {
	backends := map[string]func() tokenswap.CacheableKVStore{
		"btree": store.MemStore,
		"iavl":  func() tokenswap.CacheableKVStore { return iavl.NewMemCommitStore().Adapter() },
	}
	tokenProgram := tokenswap.ProgramAddress("token")
	escrowProgram := tokenswap.ProgramAddress("escrow")

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			base := newStore()
			b := NewAccountBucket()

			var committed []tokenswap.Address
			for i := byte(1); i <= 12; i++ {
				addr := tokenswap.Address{i, 0xAB}
				owner := tokenProgram
				if i%3 == 0 {
					owner = escrowProgram
				}
				assert.Nil(t, b.Save(base, addr, &tokenswap.Account{Lamports: uint64(i), Owner: owner, Data: []byte{i}}))
				committed = append(committed, addr)
			}
			before := ownedBy(t, b, base, escrowProgram)
			assert.Equal(t, []tokenswap.Address{committed[2], committed[5], committed[8], committed[11]}, before)

			tx := base.CacheWrap()
			// close an escrow account
			assert.Nil(t, b.Save(tx, committed[2], &tokenswap.Account{Owner: escrowProgram}))
			// hand a token account over
			assert.Nil(t, b.Save(tx, committed[0], &tokenswap.Account{Lamports: 1, Owner: escrowProgram, Data: []byte{1}}))
			// open new ones around the existing keys
			opened := []tokenswap.Address{{0, 1}, {6, 0xAC}, {0xFF}}
			for _, addr := range opened {
				assert.Nil(t, b.Save(tx, addr, &tokenswap.Account{Lamports: 7, Owner: escrowProgram, Data: []byte{7}}))
			}

			want := append([]tokenswap.Address{committed[0], committed[5], committed[8], committed[11]}, opened...)
			sort.Slice(want, func(i, j int) bool { return bytes.Compare(want[i][:], want[j][:]) < 0 })

			assert.Equal(t, want, ownedBy(t, b, tx, escrowProgram))
			assert.Equal(t, 7, len(ownedBy(t, b, tx, tokenProgram)))
			assert.Equal(t, before, ownedBy(t, b, base, escrowProgram))

			// a discarded transaction leaves the index untouched
			failed := base.CacheWrap()
			assert.Nil(t, b.Save(failed, committed[5], &tokenswap.Account{Owner: escrowProgram}))
			failed.Discard()
			assert.Equal(t, before, ownedBy(t, b, base, escrowProgram))

			assert.Nil(t, tx.Write())
			assert.Equal(t, want, ownedBy(t, b, base, escrowProgram))
			assert.Equal(t, 7, len(ownedBy(t, b, base, tokenProgram)))
		})
	}
}

func ownedBy(t testing.TB, b AccountBucket, db tokenswap.ReadOnlyKVStore, owner tokenswap.Address) []tokenswap.Address {
	t.Helper()
	accs, err := b.ByOwner(db, owner)
	assert.Nil(t, err)
	res := make([]tokenswap.Address, len(accs))
	for i, a := range accs {
		res[i] = a.Key
	}
	return res
}
