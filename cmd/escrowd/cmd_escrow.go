package main

import (
	"github.com/spf13/cobra"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/x/escrow"
	"github.com/iov-one/tokenswap/x/token"
)

func escrowCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escrow",
		Short: "Open, settle and cancel swap offers",
	}
	cmd.AddCommand(
		escrowMakeCmd(e),
		escrowTakeCmd(e),
		escrowRefundCmd(e),
		escrowShowCmd(e),
		escrowListCmd(e),
	)
	return cmd
}

func escrowMakeCmd(e *env) *cobra.Command {
	var (
		seed                     uint64
		depositMint, receiveMint string
		amount, receive          string
	)
	cmd := &cobra.Command{
		Use:   "make",
		Short: "Lock a deposit and ask for another token in return",
		Long: `Lock a deposit and ask for another token in return.

Amounts are given in whole units of their mints. The deposit is taken from
the associated token account of the signer, who also pays the storage
deposits of the offer. Each offer of a maker needs a distinct seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mintDeposit, err := parseAddress(depositMint)
			if err != nil {
				return errors.Wrap(err, "deposit mint")
			}
			mintReceive, err := parseAddress(receiveMint)
			if err != nil {
				return errors.Wrap(err, "receive mint")
			}
			key, err := e.signer()
			if err != nil {
				return err
			}
			l, err := e.initialized()
			if err != nil {
				return err
			}
			rawAmount, err := parseTokenAmount(l, mintDeposit, amount)
			if err != nil {
				return errors.Wrap(err, "amount")
			}
			rawReceive, err := parseTokenAmount(l, mintReceive, receive)
			if err != nil {
				return errors.Wrap(err, "receive")
			}
			ix, err := escrow.Make(escrow.MakeParams{
				Maker:       key.Address(),
				MintDeposit: mintDeposit,
				MintReceive: mintReceive,
				Seed:        seed,
				Receive:     rawReceive,
				Amount:      rawAmount,
			})
			if err != nil {
				return err
			}
			if _, err := e.submit(l, []*crypto.PrivateKey{key}, ix); err != nil {
				return err
			}
			offer, err := escrow.LookupBySeed(l, key.Address(), seed)
			if err != nil {
				return err
			}
			return e.printOffer(l, offer)
		},
	}
	fl := cmd.Flags()
	fl.Uint64Var(&seed, "seed", 0, "number distinguishing offers of the same maker")
	fl.StringVar(&depositMint, "deposit-mint", "", "mint of the deposited token")
	fl.StringVar(&receiveMint, "receive-mint", "", "mint of the token asked in return")
	fl.StringVar(&amount, "amount", "", "deposited amount")
	fl.StringVar(&receive, "receive", "", "amount asked in return")
	for _, name := range []string{"deposit-mint", "receive-mint", "amount", "receive"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func escrowTakeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "take <record>",
		Short: "Pay the asked amount and receive the deposit of an offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, l, offer, err := loadOffer(e, args[0])
			if err != nil {
				return err
			}
			ix, err := escrow.Take(escrow.TakeParams{Taker: key.Address(), Record: offer.Record})
			if err != nil {
				return err
			}
			return e.execute(l, []*crypto.PrivateKey{key}, ix)
		},
	}
}

func escrowRefundCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "refund <record>",
		Short: "Cancel an offer of the signer and recover the deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, l, offer, err := loadOffer(e, args[0])
			if err != nil {
				return err
			}
			ix, err := escrow.Refund(offer.Record, tokenswap.Address{})
			if err != nil {
				return err
			}
			return e.execute(l, []*crypto.PrivateKey{key}, ix)
		},
	}
}

func escrowShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <record>",
		Short: "Show an active offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			l, err := e.initialized()
			if err != nil {
				return err
			}
			offer, err := escrow.Lookup(l, record)
			if err != nil {
				return err
			}
			return e.printOffer(l, offer)
		},
	}
}

func escrowListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list [maker]",
		Short: "List active offers of a maker, the signer by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maker, err := addressOrSigner(e, args)
			if err != nil {
				return err
			}
			l, err := e.initialized()
			if err != nil {
				return err
			}
			offers, err := escrow.ListByMaker(l, maker)
			if err != nil {
				return err
			}
			views := make([]*offerView, 0, len(offers))
			for _, o := range offers {
				v, err := newOfferView(l, o)
				if err != nil {
					return err
				}
				views = append(views, v)
			}
			return e.print(views)
		},
	}
}

func loadOffer(e *env, arg string) (*crypto.PrivateKey, *runtime.Ledger, *escrow.Offer, error) {
	record, err := parseAddress(arg)
	if err != nil {
		return nil, nil, nil, err
	}
	key, err := e.signer()
	if err != nil {
		return nil, nil, nil, err
	}
	l, err := e.initialized()
	if err != nil {
		return nil, nil, nil, err
	}
	offer, err := escrow.Lookup(l, record)
	if err != nil {
		return nil, nil, nil, err
	}
	return key, l, offer, nil
}

// offerView renders amounts in whole units of their mints.
type offerView struct {
	Address     tokenswap.Address `json:"address"`
	Vault       tokenswap.Address `json:"vault"`
	Maker       tokenswap.Address `json:"maker"`
	Seed        uint64            `json:"seed"`
	MintDeposit tokenswap.Address `json:"mint_deposit"`
	Deposit     string            `json:"deposit"`
	MintReceive tokenswap.Address `json:"mint_receive"`
	Receive     string            `json:"receive"`
	State       string            `json:"state"`
}

func newOfferView(l *runtime.Ledger, o *escrow.Offer) (*offerView, error) {
	depositDecimals, err := mintDecimals(l, o.MintDeposit)
	if err != nil {
		return nil, err
	}
	receiveDecimals, err := mintDecimals(l, o.MintReceive)
	if err != nil {
		return nil, err
	}
	acc, err := l.Account(o.Address)
	if err != nil {
		return nil, err
	}
	return &offerView{
		Address:     o.Address,
		Vault:       o.Vault,
		Maker:       o.Maker,
		Seed:        o.Seed,
		MintDeposit: o.MintDeposit,
		Deposit:     token.FormatAmount(o.Deposit, depositDecimals),
		MintReceive: o.MintReceive,
		Receive:     token.FormatAmount(o.ReceiveAmount, receiveDecimals),
		State:       escrow.LifecycleOf(acc).String(),
	}, nil
}

func (e *env) printOffer(l *runtime.Ledger, o *escrow.Offer) error {
	v, err := newOfferView(l, o)
	if err != nil {
		return err
	}
	return e.print(v)
}
