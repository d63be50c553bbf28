package system_test

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/store/iavl"
	"github.com/iov-one/tokenswap/weavetest"
	"github.com/iov-one/tokenswap/weavetest/assert"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
)

func TestGenesis(t *testing.T) {
	alice := weavetest.KeyFromName("alice").Address()
	mint := weavetest.KeyFromName("mint").Address()
	holding := token.MustAssociatedAddress(alice, mint)

	cases := map[string]struct {
		system  string
		token   string
		want    map[tokenswap.Address]uint64
		wantErr *errors.Error
	}{
		"credits": {
			system: `[{"address": "` + alice.String() + `", "lamports": 10}]`,
			want:   map[tokenswap.Address]uint64{alice: 10},
		},
		"repeated address adds up": {
			system: `[{"address": "` + alice.String() + `", "lamports": 10}, {"address": "` + alice.String() + `", "lamports": 5}]`,
			want:   map[tokenswap.Address]uint64{alice: 15},
		},
		"overflow": {
			system:  `[{"address": "` + alice.String() + `", "lamports": 18446744073709551615}, {"address": "` + alice.String() + `", "lamports": 1}]`,
			wantErr: errors.ErrOverflow,
		},
		"missing address": {
			system:  `[{"lamports": 1}]`,
			wantErr: errors.ErrEmpty,
		},
		"malformed": {
			system:  `{"lamports": 1}`,
			wantErr: errors.ErrInvalidInput,
		},
		"program owned account": {
			token: `{"mints": [{"address": "` + mint.String() + `", "authority": "` + alice.String() + `"}],
				"holdings": [{"mint": "` + mint.String() + `", "owner": "` + alice.String() + `"}]}`,
			system:  `[{"address": "` + holding.String() + `", "lamports": 1}]`,
			wantErr: system.ErrNotSystemOwned,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			l, err := runtime.NewLedger(iavl.NewMemCommitStore(), runtime.NewRouter())
			assert.Nil(t, err)
			opts := tokenswap.Options{"system": json.RawMessage(tc.system)}
			if tc.token != "" {
				opts["token"] = json.RawMessage(tc.token)
			}
			init := runtime.ChainInitializers(token.Initializer{}, system.Initializer{})
			_, err = l.InitChain("genesis-test", opts, init)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			for addr, lamports := range tc.want {
				acc, err := l.Account(addr)
				assert.Nil(t, err)
				assert.Equal(t, lamports, acc.Lamports)
			}
		})
	}
}
