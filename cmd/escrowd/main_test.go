package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/x/escrow"
	"github.com/iov-one/tokenswap/x/p256vault"
	"github.com/iov-one/tokenswap/x/token"
)

// escrowd executes a command against the ledger under home and returns
// its output.
func escrowd(t *testing.T, home string, args ...string) ([]byte, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(append([]string{"--home", home, "--log-level", "none"}, args...), &out, &errOut)
	return out.Bytes(), err
}

func mustEscrowd(t *testing.T, home string, dest interface{}, args ...string) {
	t.Helper()
	out, err := escrowd(t, home, args...)
	require.NoError(t, err, "escrowd %v", args)
	if dest != nil {
		require.NoError(t, json.Unmarshal(out, dest), string(out))
	}
}

func TestSwapFlow(t *testing.T) {
	home, err := ioutil.TempDir("", "escrowd")
	require.NoError(t, err)
	defer os.RemoveAll(home)
	takerKey := filepath.Join(home, "taker.key")

	var maker, taker map[string]string
	mustEscrowd(t, home, &maker, "keys", "generate")
	mustEscrowd(t, home, &taker, "--key", takerKey, "keys", "generate")

	_, err = escrowd(t, home, "keys", "generate")
	assert.True(t, errors.ErrDuplicate.Is(err), "key must not be overwritten: %v", err)

	// nothing works before genesis
	_, err = escrowd(t, home, "account")
	assert.True(t, errors.ErrInvalidState.Is(err), "%v", err)

	genesis := fmt.Sprintf(`{"chain_id": "cli-test", "app_state": {"system": [
		{"address": %q, "lamports": 1000000000},
		{"address": %q, "lamports": 1000000000}
	]}}`, maker["address"], taker["address"])
	genesisPath := filepath.Join(home, "genesis.json")
	require.NoError(t, ioutil.WriteFile(genesisPath, []byte(genesis), 0600))
	var initRes struct {
		ChainID string `json:"chain_id"`
		Height  int64  `json:"height"`
	}
	mustEscrowd(t, home, &initRes, "init", genesisPath)
	assert.Equal(t, "cli-test", initRes.ChainID)
	assert.EqualValues(t, 1, initRes.Height)

	_, err = escrowd(t, home, "init", genesisPath)
	assert.True(t, errors.ErrInvalidState.Is(err), "%v", err)

	var mintA, mintB struct {
		Mint string `json:"mint"`
	}
	mustEscrowd(t, home, &mintA, "mint", "create", "--decimals", "2")
	mustEscrowd(t, home, &mintB, "--key", takerKey, "mint", "create")
	mustEscrowd(t, home, nil, "mint", "issue", mintA.Mint, maker["address"], "10")
	mustEscrowd(t, home, nil, "--key", takerKey, "mint", "issue", mintB.Mint, taker["address"], "5")

	var offer offerView
	mustEscrowd(t, home, &offer, "escrow", "make", "--seed", "7",
		"--deposit-mint", mintA.Mint, "--amount", "10",
		"--receive-mint", mintB.Mint, "--receive", "5")
	assert.Equal(t, "10", offer.Deposit)
	assert.Equal(t, "5", offer.Receive)
	assert.Equal(t, escrow.Active.String(), offer.State)
	assert.EqualValues(t, 7, offer.Seed)

	// more decimals than the mint has
	_, err = escrowd(t, home, "escrow", "make", "--seed", "8",
		"--deposit-mint", mintA.Mint, "--amount", "0.001",
		"--receive-mint", mintB.Mint, "--receive", "5")
	assert.True(t, errors.ErrInvalidAmount.Is(err), "%v", err)

	var offers []offerView
	mustEscrowd(t, home, &offers, "escrow", "list")
	require.Len(t, offers, 1)
	assert.Equal(t, offer, offers[0])

	// only the maker can cancel
	_, err = escrowd(t, home, "--key", takerKey, "escrow", "refund", offer.Address.String())
	assert.True(t, runtime.ErrNotSigned.Is(err), "%v", err)

	mustEscrowd(t, home, nil, "--key", takerKey, "escrow", "take", offer.Address.String())

	_, err = escrowd(t, home, "escrow", "show", offer.Address.String())
	assert.True(t, escrow.ErrRecordNotFound.Is(err), "%v", err)
	mustEscrowd(t, home, &offers, "escrow", "list", maker["address"])
	assert.Len(t, offers, 0)

	var holding accountView
	mustEscrowd(t, home, &holding, "account", offerHolding(t, taker["address"], mintA.Mint))
	require.NotNil(t, holding.Token)
	assert.Equal(t, "10", holding.Token.Amount)
}

func TestVaultFlow(t *testing.T) {
	home, err := ioutil.TempDir("", "escrowd")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	var key map[string]string
	mustEscrowd(t, home, &key, "keys", "generate")
	genesis := fmt.Sprintf(`{"chain_id": "cli-test", "app_state": {"system": [{"address": %q, "lamports": 5000}]}}`, key["address"])
	genesisPath := filepath.Join(home, "genesis.json")
	require.NoError(t, ioutil.WriteFile(genesisPath, []byte(genesis), 0600))
	mustEscrowd(t, home, nil, "init", genesisPath)

	mustEscrowd(t, home, nil, "vault", "deposit", "2000")
	var acc accountView
	mustEscrowd(t, home, &acc, "account")
	assert.EqualValues(t, 3000, acc.Lamports)

	mustEscrowd(t, home, nil, "vault", "withdraw")
	mustEscrowd(t, home, &acc, "account")
	assert.EqualValues(t, 5000, acc.Lamports)

	_, err = escrowd(t, home, "vault", "deposit", "lots")
	assert.True(t, errors.ErrInvalidAmount.Is(err), "%v", err)
}

func TestP256VaultFlow(t *testing.T) {
	home, err := ioutil.TempDir("", "escrowd")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	var key map[string]string
	mustEscrowd(t, home, &key, "keys", "generate")
	genesis := fmt.Sprintf(`{"chain_id": "cli-test", "app_state": {"system": [{"address": %q, "lamports": 5000}]}}`, key["address"])
	genesisPath := filepath.Join(home, "genesis.json")
	require.NoError(t, ioutil.WriteFile(genesisPath, []byte(genesis), 0600))
	mustEscrowd(t, home, nil, "init", genesisPath)

	pemPath := filepath.Join(home, "vault.pem")
	var v map[string]string
	mustEscrowd(t, home, &v, "p256vault", "keygen", pemPath)
	var same map[string]string
	mustEscrowd(t, home, &same, "p256vault", "address", v["pubkey"])
	assert.Equal(t, v, same)

	_, err = escrowd(t, home, "p256vault", "keygen", pemPath)
	assert.True(t, errors.ErrDuplicate.Is(err), "%v", err)

	mustEscrowd(t, home, nil, "p256vault", "deposit", v["pubkey"], "1500")
	var acc accountView
	mustEscrowd(t, home, &acc, "account", v["vault"])
	assert.EqualValues(t, 1500, acc.Lamports)

	// an authorization that already expired is refused
	_, err = escrowd(t, home, "p256vault", "withdraw", "--ttl=-1h", pemPath)
	assert.True(t, p256vault.ErrExpired.Is(err), "%v", err)

	mustEscrowd(t, home, nil, "p256vault", "withdraw", pemPath)
	mustEscrowd(t, home, &acc, "account")
	assert.EqualValues(t, 5000, acc.Lamports)

	_, err = escrowd(t, home, "p256vault", "address", "abcd")
	assert.True(t, errors.ErrInvalidInput.Is(err), "%v", err)
}

func offerHolding(t *testing.T, owner, mint string) string {
	t.Helper()
	o, err := parseAddress(owner)
	require.NoError(t, err)
	m, err := parseAddress(mint)
	require.NoError(t, err)
	return token.MustAssociatedAddress(o, m).String()
}
