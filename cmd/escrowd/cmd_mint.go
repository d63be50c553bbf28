package main

import (
	"github.com/spf13/cobra"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
)

func mintCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Create mints and issue tokens",
	}

	var decimals uint8
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a mint with the signer as its authority",
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
			mint := crypto.GenPrivKeyEd25519()
			res, err := e.submit(l, []*crypto.PrivateKey{key, mint},
				system.CreateAccount(key.Address(), mint.Address(),
					l.Rent().MinimumBalance(token.MintLen), token.MintLen, token.ProgramID),
				token.InitializeMint(mint.Address(), key.Address(), nil, decimals),
			)
			if err != nil {
				return err
			}
			return e.print(struct {
				Mint tokenswap.Address `json:"mint"`
				Tx   *txResult         `json:"tx"`
			}{mint.Address(), res})
		},
	}
	create.Flags().Uint8Var(&decimals, "decimals", 0, "number of fractional digits of the token")

	issue := &cobra.Command{
		Use:   "issue <mint> <owner> <amount>",
		Short: "Mint tokens into the associated account of owner, creating it when missing",
		Long: `Mint tokens into the associated account of owner, creating it when missing.

The amount is given in whole units, for example 1.5 for a mint with 2 decimals
issues 150 raw units. The signer must be the mint authority and pays for the
new account.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			owner, err := parseAddress(args[1])
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
			amount, err := parseTokenAmount(l, mint, args[2])
			if err != nil {
				return err
			}
			ata, _, err := token.AssociatedAddress(owner, mint)
			if err != nil {
				return err
			}
			return e.execute(l, []*crypto.PrivateKey{key},
				token.CreateAssociated(key.Address(), owner, mint, true),
				token.MintTo(mint, ata, key.Address(), amount),
			)
		},
	}

	cmd.AddCommand(create, issue)
	return cmd
}

func mintDecimals(l *runtime.Ledger, mint tokenswap.Address) (uint8, error) {
	acc, err := l.Account(mint)
	if err != nil {
		return 0, err
	}
	if !acc.IsOwnedBy(token.ProgramID) {
		return 0, errors.Wrapf(errors.ErrNotFound, "mint %s", mint)
	}
	m, err := token.UnpackMint(acc.Data)
	if err != nil {
		return 0, errors.Wrapf(err, "mint %s", mint)
	}
	return m.Decimals, nil
}

// parseTokenAmount converts an amount in whole units of mint into raw
// token units.
func parseTokenAmount(l *runtime.Ledger, mint tokenswap.Address, s string) (uint64, error) {
	decimals, err := mintDecimals(l, mint)
	if err != nil {
		return 0, err
	}
	return token.ParseAmount(s, decimals)
}
