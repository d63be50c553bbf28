package main

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ed25519"

	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
)

func keysCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the private key transactions are signed with",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new private key",
		Long: `Generate a new private key.

When successful a new file with binary content containing the key seed is
created. This command fails if the private key file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := crypto.GenPrivKeyEd25519()
			if err := saveKey(e.cfg.Key, key); err != nil {
				return err
			}
			return e.print(map[string]string{"address": key.Address().String(), "key": e.cfg.Key})
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the address of the private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := e.signer()
			if err != nil {
				return err
			}
			return e.print(map[string]string{"address": key.Address().String()})
		},
	}

	cmd.AddCommand(generate, show)
	return cmd
}

// saveKey writes the key seed to path. An existing file is never
// overwritten.
func saveKey(path string, key *crypto.PrivateKey) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first to ensure we do not delete
		// such crucial data by an accident (bad command usage).
		return errors.Wrapf(errors.ErrDuplicate, "private key file %q already exists, delete this file and try again", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot create key directory: %s", err)
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(key.Seed()); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot close private key file: %s", err)
	}
	return nil
}

func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "cannot read private key file: %s", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid private key length: %d", len(raw))
	}
	return crypto.PrivKeyEd25519FromSeed(raw), nil
}
