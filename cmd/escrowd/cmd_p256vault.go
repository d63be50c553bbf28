package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/p256vault"
)

const p256PEMType = "EC PRIVATE KEY"

func p256vaultCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "p256vault",
		Short: "Park lamports in a vault controlled by a P-256 key",
	}

	keygen := &cobra.Command{
		Use:   "keygen <key.pem>",
		Short: "Generate a P-256 key and print the vault it controls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
			if err != nil {
				return errors.Wrap(err, "generate p256 key")
			}
			if err := saveP256Key(args[0], key); err != nil {
				return err
			}
			return e.printP256Vault(p256vault.CompressPublicKey(&key.PublicKey))
		},
	}

	address := &cobra.Command{
		Use:   "address <pubkey-hex>",
		Short: "Print the vault of a compressed public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubkey, err := parsePubKey(args[0])
			if err != nil {
				return err
			}
			return e.printP256Vault(pubkey)
		},
	}

	deposit := &cobra.Command{
		Use:   "deposit <pubkey-hex> <lamports>",
		Short: "Move lamports of the signer into an empty vault",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubkey, err := parsePubKey(args[0])
			if err != nil {
				return err
			}
			lamports, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.Wrapf(errors.ErrInvalidAmount, "lamports: %s", err)
			}
			key, err := e.signer()
			if err != nil {
				return err
			}
			l, err := e.initialized()
			if err != nil {
				return err
			}
			ix, err := p256vault.Deposit(key.Address(), pubkey, lamports)
			if err != nil {
				return err
			}
			return e.execute(l, []*crypto.PrivateKey{key}, ix)
		},
	}

	withdraw := &cobra.Command{
		Use:   "withdraw <key.pem>",
		Short: "Authorize the signer with the P-256 key and empty the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}
			p256Key, err := loadP256Key(args[0])
			if err != nil {
				return err
			}
			key, err := e.signer()
			if err != nil {
				return err
			}
			l, err := e.initialized()
			if err != nil {
				return err
			}
			auth, err := p256vault.Sign(p256Key, key.Address(), time.Now().Add(ttl).Unix())
			if err != nil {
				return err
			}
			ix, err := p256vault.Withdraw(key.Address(), p256vault.CompressPublicKey(&p256Key.PublicKey), auth)
			if err != nil {
				return err
			}
			return e.execute(l, []*crypto.PrivateKey{key}, ix)
		},
	}
	withdraw.Flags().Duration("ttl", time.Minute, "how long the withdraw authorization stays valid")

	cmd.AddCommand(keygen, address, deposit, withdraw)
	return cmd
}

func (e *env) printP256Vault(pubkey []byte) error {
	v, _, err := p256vault.Address(pubkey)
	if err != nil {
		return err
	}
	return e.print(map[string]string{
		"pubkey": hex.EncodeToString(pubkey),
		"vault":  v.String(),
	})
}

func parsePubKey(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "public key must be hex encoded: %s", err)
	}
	if len(raw) != p256vault.PubKeyLength {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "public key is %d bytes", len(raw))
	}
	return raw, nil
}

// saveP256Key writes key as PEM. An existing file is never overwritten.
func saveP256Key(path string, key *ecdsa.PrivateKey) error {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return errors.Wrap(err, "marshal p256 key")
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(errors.ErrDuplicate, "key file %q already exists", path)
		}
		return errors.Wrapf(errors.ErrInvalidInput, "cannot create key file: %s", err)
	}
	defer fd.Close()
	if err := pem.Encode(fd, &pem.Block{Type: p256PEMType, Bytes: der}); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot write key: %s", err)
	}
	return fd.Close()
}

func loadP256Key(path string) (*ecdsa.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "cannot read key file: %s", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil || block.Type != p256PEMType {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s is not a PEM encoded P-256 key", path)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse p256 key: %s", err)
	}
	if key.Curve != elliptic.P256() {
		return nil, errors.Wrap(errors.ErrInvalidInput, "key is not on P-256")
	}
	return key, nil
}
