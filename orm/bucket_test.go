package orm

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/weavetest/assert"
)

// counter is a minimal model used by the tests.
type counter struct {
	Count uint64
	Group byte
}

func (c *counter) Marshal() ([]byte, error) {
	out := make([]byte, 9)
	binary.BigEndian.PutUint64(out, c.Count)
	out[8] = c.Group
	return out, nil
}

func (c *counter) Unmarshal(raw []byte) error {
	if len(raw) != 9 {
		return errors.Wrap(errors.ErrInvalidInput, "counter size")
	}
	c.Count = binary.BigEndian.Uint64(raw)
	c.Group = raw[8]
	return nil
}

func (c *counter) Validate() error {
	if c.Count == 0 {
		return errors.Wrap(errors.ErrEmpty, "count")
	}
	return nil
}

func newCounter() Model { return &counter{} }

func byGroup(key []byte, m Model) ([]byte, error) {
	return []byte{m.(*counter).Group}, nil
}

func TestBucket(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", newCounter)

	if err := b.Put(db, []byte("c1"), &counter{Count: 1}); err != nil {
		t.Fatalf("cannot save counter instance: %s", err)
	}

	var c1 counter
	if err := b.One(db, []byte("c1"), &c1); err != nil {
		t.Fatalf("cannot get c1 counter: %s", err)
	}
	if c1.Count != 1 {
		t.Fatalf("unexpected counter state: %d", c1.Count)
	}

	if err := b.Put(db, []byte("c2"), &counter{}); !errors.ErrEmpty.Is(err) {
		t.Fatalf("invalid model must not be stored: %s", err)
	}

	if err := b.Delete(db, []byte("c1")); err != nil {
		t.Fatalf("cannot delete c1 counter: %s", err)
	}
	if err := b.Delete(db, []byte("unknown")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error when deleting unexisting instance: %s", err)
	}
	if err := b.One(db, []byte("c1"), &c1); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error for an unknown model get: %s", err)
	}
}

func TestBucketIterate(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", newCounter)
	other := NewBucket("other", newCounter)

	for i, k := range []string{"b", "a", "c"} {
		assert.Nil(t, b.Put(db, []byte(k), &counter{Count: uint64(i + 1)}))
	}
	assert.Nil(t, other.Put(db, []byte("a"), &counter{Count: 99}))

	var keys []string
	var total uint64
	err := b.Iterate(db, func(key []byte, m Model) error {
		keys = append(keys, string(key))
		total += m.(*counter).Count
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, uint64(6), total)

	stop := errors.Wrap(errors.ErrHuman, "stop")
	err = b.Iterate(db, func([]byte, Model) error { return stop })
	assert.IsErr(t, errors.ErrHuman, err)
}

func TestBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", newCounter).WithIndex("group", byGroup)

	assert.Nil(t, b.Put(db, []byte("a"), &counter{Count: 1, Group: 1}))
	assert.Nil(t, b.Put(db, []byte("b"), &counter{Count: 2, Group: 1}))
	assert.Nil(t, b.Put(db, []byte("c"), &counter{Count: 3, Group: 2}))

	keys, err := b.KeysByIndex(db, "group", []byte{1})
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, keys)

	// moving an entity between groups updates the index
	assert.Nil(t, b.Put(db, []byte("b"), &counter{Count: 2, Group: 2}))
	keys, err = b.KeysByIndex(db, "group", []byte{2})
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("c")}, keys)

	assert.Nil(t, b.Delete(db, []byte("a")))
	keys, err = b.KeysByIndex(db, "group", []byte{1})
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))

	_, err = b.KeysByIndex(db, "unknown", nil)
	assert.IsErr(t, ErrInvalidIndex, err)

	assert.Panics(t, func() { b.WithIndex("group", byGroup) })
}

func TestPrefixRange(t *testing.T) {
	start, end := prefixRange([]byte("abc"))
	assert.Equal(t, []byte("abc"), start)
	assert.Equal(t, []byte("abd"), end)

	_, end = prefixRange([]byte{0x01, 0xff})
	assert.Equal(t, []byte{0x02, 0x00}, end)

	_, end = prefixRange([]byte{0xff, 0xff})
	if end != nil {
		t.Fatalf("want open range, got %X", end)
	}
}

func TestBucketName(t *testing.T) {
	assert.Panics(t, func() { NewBucket("Invalid-Name", newCounter) })
}
