package weavetest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/store/iavl"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data.
// This implementation should be used instead of a memory store when you want
// the exact same storage implementation as the production instance is using.
func CommitKVStore(t testing.TB) (db tokenswap.CommitKVStore, cleanup func()) {
	dbpath, err := ioutil.TempDir("", "tokenswap")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}

	db, err = iavl.NewCommitStore(dbpath, "db")
	if err != nil {
		os.RemoveAll(dbpath)
		t.Fatalf("cannot open store: %s", err)
	}
	return db, func() { os.RemoveAll(dbpath) }
}
