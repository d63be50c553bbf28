package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/system"
	"github.com/iov-one/tokenswap/x/token"
)

type accountView struct {
	Address  tokenswap.Address `json:"address"`
	Lamports uint64            `json:"lamports"`
	Owner    tokenswap.Address `json:"owner"`
	DataLen  int               `json:"data_len"`
	// Token is set for token accounts.
	Token *holdingView `json:"token,omitempty"`
}

type holdingView struct {
	Mint   tokenswap.Address `json:"mint"`
	Owner  tokenswap.Address `json:"owner"`
	Amount string            `json:"amount"`
}

func accountCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "account [address]",
		Short: "Show an account, the signer's wallet by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := addressOrSigner(e, args)
			if err != nil {
				return err
			}
			l, err := e.initialized()
			if err != nil {
				return err
			}
			acc, err := l.Account(addr)
			if err != nil {
				return err
			}
			view := accountView{Address: addr, Lamports: acc.Lamports, Owner: acc.Owner, DataLen: len(acc.Data)}
			if acc.IsOwnedBy(token.ProgramID) && len(acc.Data) == token.AccountLen {
				h, err := token.UnpackAccount(acc.Data)
				if err != nil {
					return err
				}
				decimals, err := mintDecimals(l, h.Mint)
				if err != nil {
					return err
				}
				view.Token = &holdingView{Mint: h.Mint, Owner: h.Owner, Amount: token.FormatAmount(h.Amount, decimals)}
			}
			return e.print(view)
		},
	}
}

func transferCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <recipient> <lamports>",
		Short: "Send lamports from the signer's wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parseAddress(args[0])
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
			return e.execute(l, []*crypto.PrivateKey{key}, system.Transfer(key.Address(), to, lamports))
		},
	}
}

func addressOrSigner(e *env, args []string) (tokenswap.Address, error) {
	if len(args) > 0 {
		return parseAddress(args[0])
	}
	key, err := e.signer()
	if err != nil {
		return tokenswap.Address{}, err
	}
	return key.Address(), nil
}
