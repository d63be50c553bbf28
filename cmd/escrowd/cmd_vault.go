package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/vault"
)

func vaultCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Park lamports in the program controlled vault of the signer",
	}

	deposit := &cobra.Command{
		Use:   "deposit <lamports>",
		Short: "Move lamports into the empty vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := strconv.ParseUint(args[0], 10, 64)
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
			ix, err := vault.Deposit(key.Address(), lamports)
			if err != nil {
				return err
			}
			return e.execute(l, []*crypto.PrivateKey{key}, ix)
		},
	}

	withdraw := &cobra.Command{
		Use:   "withdraw",
		Short: "Move all lamports of the vault back to the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := e.signer()
			if err != nil {
				return err
			}
			l, err := e.initialized()
			if err != nil {
				return err
			}
			ix, err := vault.Withdraw(key.Address())
			if err != nil {
				return err
			}
			return e.execute(l, []*crypto.PrivateKey{key}, ix)
		},
	}

	cmd.AddCommand(deposit, withdraw)
	return cmd
}
