package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/runtime"
	"github.com/iov-one/tokenswap/std"
)

// env is shared by all commands of a single execution.
type env struct {
	cfg    *config
	logger log.Logger
	out    io.Writer
	// l is opened on first use and closed by run.
	l *runtime.Ledger
}

// run executes the command line args.
func run(args []string, out, errOut io.Writer) error {
	e := &env{}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	if e.l != nil {
		if cerr := e.l.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "escrowd",
		Short:         "Token swap escrow ledger",
		Version:       tokenswap.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			e.cfg, e.logger, e.out = cfg, logger, cmd.OutOrStdout()
			return nil
		},
	}
	registerConfigFlags(root.PersistentFlags())

	root.AddCommand(
		keysCmd(e),
		initCmd(e),
		accountCmd(e),
		transferCmd(e),
		mintCmd(e),
		escrowCmd(e),
		vaultCmd(e),
		p256vaultCmd(e),
	)
	return root
}

func initCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init <genesis.json>",
		Short: "Create the ledger and load the genesis state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(filepath.Dir(e.cfg.DB), 0700); err != nil {
				return errors.Wrapf(errors.ErrDatabase, "create data directory: %s", err)
			}
			l, err := e.ledger()
			if err != nil {
				return err
			}
			if l.ChainID() != "" {
				return errors.Wrapf(errors.ErrInvalidState, "ledger already initialized for chain %s", l.ChainID())
			}
			id, err := std.InitLedger(l, args[0])
			if err != nil {
				return err
			}
			return e.print(struct {
				ChainID string `json:"chain_id"`
				Height  int64  `json:"height"`
				Hash    string `json:"hash"`
			}{l.ChainID(), id.Version, hex.EncodeToString(id.Hash)})
		},
	}
}

// ledger opens the configured ledger.
func (e *env) ledger() (*runtime.Ledger, error) {
	if e.l != nil {
		return e.l, nil
	}
	l, err := std.Ledger(e.cfg.DB, runtime.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.l = l
	return l, nil
}

// initialized opens the configured ledger and fails if no genesis was
// loaded yet.
func (e *env) initialized() (*runtime.Ledger, error) {
	l, err := e.ledger()
	if err != nil {
		return nil, err
	}
	if l.ChainID() == "" {
		return nil, errors.Wrapf(errors.ErrInvalidState, "ledger %s is not initialized, run init first", e.cfg.DB)
	}
	return l, nil
}

// signer loads the configured private key.
func (e *env) signer() (*crypto.PrivateKey, error) {
	return loadKey(e.cfg.Key)
}

type txResult struct {
	Height  int64               `json:"height"`
	Hash    string              `json:"hash"`
	Signers []tokenswap.Address `json:"signers"`
	Changed []tokenswap.Address `json:"changed"`
}

// execute submits the instructions and prints the result.
func (e *env) execute(l *runtime.Ledger, keys []*crypto.PrivateKey, ixs ...tokenswap.Instruction) error {
	res, err := e.submit(l, keys, ixs...)
	if err != nil {
		return err
	}
	return e.print(res)
}

// submit signs the instructions with all keys and executes them as a
// single transaction.
func (e *env) submit(l *runtime.Ledger, keys []*crypto.PrivateKey, ixs ...tokenswap.Instruction) (*txResult, error) {
	tx := runtime.NewTx(ixs...)
	for _, k := range keys {
		seq, err := l.NextNonce(k.Address())
		if err != nil {
			return nil, err
		}
		if err := tx.Sign(k, l.ChainID(), seq); err != nil {
			return nil, err
		}
	}
	res, err := l.Submit(context.Background(), tx)
	if err != nil {
		return nil, err
	}
	out := txResult{
		Height:  res.Height,
		Hash:    hex.EncodeToString(res.Hash),
		Signers: res.Signers,
	}
	for _, c := range res.Changed {
		out.Changed = append(out.Changed, c.Key)
	}
	return &out, nil
}

func (e *env) print(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAddress(s string) (tokenswap.Address, error) {
	a, err := tokenswap.ParseAddress(s)
	if err != nil {
		return a, errors.Wrapf(errors.ErrInvalidInput, "address %q: %s", s, err)
	}
	return a, nil
}
