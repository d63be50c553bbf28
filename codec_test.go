package tokenswap

import (
	"testing"

	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/weavetest/assert"
)

func TestFieldReader(t *testing.T) {
	raw, err := NewFieldWriter().
		Varint(1, 300).
		Bytes(2, []byte("abc")).
		Varint(3, 0).
		Result()
	assert.Nil(t, err)

	r := NewFieldReader(raw)
	field, wire, err := r.Next()
	assert.Nil(t, err)
	assert.Equal(t, 1, field)
	assert.Equal(t, WireVarint, wire)
	v, err := r.Varint()
	assert.Nil(t, err)
	assert.Equal(t, uint64(300), v)

	field, wire, err = r.Next()
	assert.Nil(t, err)
	assert.Equal(t, 2, field)
	assert.Equal(t, WireBytes, wire)
	b, err := r.Bytes()
	assert.Nil(t, err)
	assert.Equal(t, []byte("abc"), b)

	// zero values are not written
	assert.Equal(t, false, r.More())
}

func TestFieldReaderErrors(t *testing.T) {
	cases := map[string]struct {
		raw     []byte
		wantErr *errors.Error
	}{
		"field zero": {
			raw:     []byte{0x00, 0x01},
			wantErr: errors.ErrInvalidInput,
		},
		"field zero with bytes": {
			raw:     []byte{0x02, 0x00},
			wantErr: errors.ErrInvalidInput,
		},
		"fixed64": {
			raw:     []byte{0x09},
			wantErr: errors.ErrInvalidInput,
		},
		"start group": {
			raw:     []byte{0x0b},
			wantErr: errors.ErrInvalidInput,
		},
		"end group": {
			raw:     []byte{0x0c},
			wantErr: errors.ErrInvalidInput,
		},
		"fixed32": {
			raw:     []byte{0x0d},
			wantErr: errors.ErrInvalidInput,
		},
		"reserved wire type": {
			raw:     []byte{0x0e},
			wantErr: errors.ErrInvalidInput,
		},
		"malformed tag": {
			raw:     []byte{0x80},
			wantErr: errors.ErrInvalidInput,
		},
		"varint": {
			raw: []byte{0x08, 0x01},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, _, err := NewFieldReader(tc.raw).Next()
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
