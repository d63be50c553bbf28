package tokenswap_test

import (
	"os"
	"testing"
	"time"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestBlockInfo(t *testing.T) {
	blocktime, err := time.Parse(time.RFC3339, "2019-03-15T14:56:00Z")
	assert.Nil(t, err)

	newLogger := log.NewTMLogger(os.Stdout)

	cases := map[string]struct {
		chainID      string
		logger       log.Logger
		err          *errors.Error
		expectLogger log.Logger
	}{
		"default logger": {
			chainID:      "test-chain",
			expectLogger: tokenswap.DefaultLogger,
		},
		"custom logger": {
			chainID:      "test-chain",
			logger:       newLogger,
			expectLogger: newLogger,
		},
		"bad chain id": {
			chainID: "invalid;;chars",
			err:     errors.ErrInvalidInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			bi, err := tokenswap.NewBlockInfo(tc.chainID, 123, blocktime, tokenswap.DefaultRent, tc.logger)
			if tc.err != nil {
				if !tc.err.Is(err) {
					t.Fatalf("Unexpected error: %+v", err)
				}
				return
			}

			assert.Nil(t, err)
			assert.Equal(t, tc.expectLogger, bi.Logger())
			assert.Equal(t, int64(123), bi.Height())
			assert.Equal(t, blocktime, bi.BlockTime())
			assert.Equal(t, tokenswap.DefaultRent, bi.Rent())
		})
	}
}
