package tokenswap_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto/bech32"
	"github.com/iov-one/tokenswap/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test base58 address printing", t, func() {
		addr := tokenswap.NewAddress([]byte("ABCD123456LHB"))

		So(addr.String(), ShouldNotEqual, fmt.Sprintf("%X", addr[:]))
		So(tokenswap.MustParseAddress(addr.String()), ShouldEqual, addr)
	})

	Convey("test zero address printing", t, func() {
		So(tokenswap.SystemProgramID.String(), ShouldEqual, strings.Repeat("1", 32))
		So(tokenswap.SystemProgramID.IsZero(), ShouldBeTrue)
	})

	Convey("test hexademical condition printing", t, func() {
		cond := tokenswap.NewCondition("123", "321", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", cond))
	})
}

func TestProgramAddress(t *testing.T) {
	Convey("program addresses", t, func() {
		a := tokenswap.ProgramAddress("escrow")
		b := tokenswap.ProgramAddress("token")

		Convey("are deterministic", func() {
			So(tokenswap.ProgramAddress("escrow"), ShouldEqual, a)
		})
		Convey("differ by name", func() {
			So(a, ShouldNotEqual, b)
		})
		Convey("are condition digests", func() {
			cond := tokenswap.NewCondition("tokenswap", "program", []byte("escrow"))
			So(cond.Address(), ShouldEqual, a)
		})
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, tokenswap.AddressLength)
	want, err := tokenswap.AddressFromBytes(raw)
	require.NoError(t, err)
	b32, err := want.Bech32(bech32.DefaultHRP)
	require.NoError(t, err)

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr tokenswap.Address
	}{
		"default decoding": {
			json:     fmt.Sprintf("%q", want.String()),
			wantAddr: want,
		},
		"hex decoding": {
			json:     fmt.Sprintf(`"hex:%x"`, raw),
			wantAddr: want,
		},
		"bech32 decoding": {
			json:     fmt.Sprintf(`"bech32:%s"`, b32),
			wantAddr: want,
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: tokenswap.NewCondition("foo", "bar", []byte("conditiondata")).Address(),
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInvalidInput,
		},
		"bech32 of a short payload": {
			json:    `"bech32:tswp1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5rud0q5"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid hex length": {
			json:    `"hex:abcd"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid base58": {
			json:    `"0OIl"`,
			wantErr: errors.ErrInvalidInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrInvalidType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: tokenswap.Address{},
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: tokenswap.Address{},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a tokenswap.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && a != tc.wantAddr {
				t.Fatalf("got address: %s", a)
			}
		})
	}
}

func TestAddressMarshalJSON(t *testing.T) {
	a := tokenswap.NewAddress([]byte("foo"))
	got, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%q", a.String()), string(got))

	var back tokenswap.Address
	require.NoError(t, json.Unmarshal(got, &back))
	assert.Equal(t, a, back)
}

func TestConditionUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json          string
		wantErr       *errors.Error
		wantCondition tokenswap.Condition
	}{
		"default decoding": {
			json:          `"foo/bar/636f6e646974696f6e64617461"`,
			wantCondition: tokenswap.NewCondition("foo", "bar", []byte("conditiondata")),
		},
		"invalid condition format": {
			json:    `"foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid condition data": {
			json:    `"foo/bar/zzzzz"`,
			wantErr: errors.ErrInvalidInput,
		},
		"zero address": {
			json:          `""`,
			wantCondition: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got tokenswap.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !got.Equals(tc.wantCondition) {
				t.Fatalf("expected %q but got condition: %q", tc.wantCondition, got)
			}
		})
	}
}

func TestConditionMarshalJSON(t *testing.T) {
	cases := map[string]struct {
		source   tokenswap.Condition
		wantJson string
	}{
		"cond encoding": {
			source:   tokenswap.NewCondition("foo", "bar", []byte("conditiondata")),
			wantJson: `"foo/bar/636F6E646974696F6E64617461"`,
		},
		"nil encoding": {
			source:   nil,
			wantJson: `""`,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := json.Marshal(tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.wantJson, string(got))
		})
	}
}
