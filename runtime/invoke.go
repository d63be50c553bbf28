package runtime

import (
	"bytes"
	"context"
	"math/bits"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// MaxCallDepth is the deepest nesting of program invocations, counting the
// top level instruction.
const MaxCallDepth = 4

// executor runs the instructions of a single transaction. All invocations
// share the same account state.
type executor struct {
	router *Router
	info   tokenswap.BlockInfo
	db     tokenswap.KVStore
	bucket AccountBucket

	// accounts holds the working state of every account loaded so far,
	// loaded keeps the state each of them had before the transaction.
	accounts map[tokenswap.Address]*tokenswap.Account
	loaded   map[tokenswap.Address]*tokenswap.Account
	order    []tokenswap.Address
}

func newExecutor(router *Router, info tokenswap.BlockInfo, db tokenswap.KVStore) *executor {
	return &executor{
		router:   router,
		info:     info,
		db:       db,
		bucket:   NewAccountBucket(),
		accounts: make(map[tokenswap.Address]*tokenswap.Account),
		loaded:   make(map[tokenswap.Address]*tokenswap.Account),
	}
}

func (e *executor) account(key tokenswap.Address) (*tokenswap.Account, error) {
	if acc, ok := e.accounts[key]; ok {
		return acc, nil
	}
	acc, err := e.bucket.Get(e.db, key)
	if err != nil {
		return nil, errors.Wrapf(err, "load account %s", key)
	}
	e.accounts[key] = acc
	e.loaded[key] = acc.Clone()
	e.order = append(e.order, key)
	return acc, nil
}

// execute runs a top level instruction. signed contains every address that
// signed the transaction.
func (e *executor) execute(ctx context.Context, ix tokenswap.Instruction, signed map[tokenswap.Address]bool) error {
	infos := make([]*tokenswap.AccountInfo, len(ix.Accounts))
	for i, m := range ix.Accounts {
		if m.IsSigner && !signed[m.Key] {
			return errors.Wrapf(ErrNotSigned, "account %d (%s)", i, m.Key)
		}
		acc, err := e.account(m.Key)
		if err != nil {
			return err
		}
		infos[i] = &tokenswap.AccountInfo{
			Key:        m.Key,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    acc,
		}
	}
	return e.call(ctx, ix.ProgramID, infos, ix.Data, 1)
}

func (e *executor) call(ctx context.Context, programID tokenswap.Address, infos []*tokenswap.AccountInfo, data []byte, depth int) error {
	if depth > MaxCallDepth {
		return errors.Wrapf(ErrCallDepth, "depth %d", depth)
	}
	p, err := e.router.Program(programID)
	if err != nil {
		return err
	}
	f := newFrame(e, programID, depth, infos)
	info := e.info.WithLogInfo("program", e.router.Name(programID), "depth", depth)
	if err := process(ctx, p, info, f, infos, data); err != nil {
		return err
	}
	return f.verify()
}

func process(ctx context.Context, p tokenswap.Program, info tokenswap.BlockInfo, inv tokenswap.Invoker, infos []*tokenswap.AccountInfo, data []byte) (err error) {
	defer errors.Recover(&err)
	return p.Process(ctx, info, inv, infos, data)
}

// changes returns the accounts modified by the transaction, in load order.
func (e *executor) changes() []KeyedAccount {
	var res []KeyedAccount
	for _, k := range e.order {
		if acc := e.accounts[k]; !acc.Equals(e.loaded[k]) {
			res = append(res, KeyedAccount{Key: k, Account: acc})
		}
	}
	return res
}

// frame is a single program invocation. It remembers the state of every
// account it was given, so that changes can be checked against what the
// program is allowed to do.
type frame struct {
	exec     *executor
	program  tokenswap.Address
	depth    int
	keys     []tokenswap.Address
	pre      map[tokenswap.Address]*tokenswap.Account
	writable map[tokenswap.Address]bool
	signer   map[tokenswap.Address]bool
}

var _ tokenswap.Invoker = (*frame)(nil)

func newFrame(e *executor, program tokenswap.Address, depth int, infos []*tokenswap.AccountInfo) *frame {
	f := &frame{
		exec:     e,
		program:  program,
		depth:    depth,
		pre:      make(map[tokenswap.Address]*tokenswap.Account, len(infos)),
		writable: make(map[tokenswap.Address]bool, len(infos)),
		signer:   make(map[tokenswap.Address]bool, len(infos)),
	}
	for _, info := range infos {
		if _, ok := f.pre[info.Key]; !ok {
			f.keys = append(f.keys, info.Key)
			f.pre[info.Key] = e.accounts[info.Key].Clone()
		}
		f.writable[info.Key] = f.writable[info.Key] || info.IsWritable
		f.signer[info.Key] = f.signer[info.Key] || info.IsSigner
	}
	return f
}

// Invoke calls another program. Privileges can only be passed down: a
// writable account must be writable for the caller, and a signer must have
// signed the caller or be an address derived from the caller program with
// one of the given seed sets.
func (f *frame) Invoke(ctx context.Context, ix tokenswap.Instruction, accounts []*tokenswap.AccountInfo, signerSeeds ...[][]byte) error {
	if err := ix.Validate(); err != nil {
		return err
	}
	derived := make(map[tokenswap.Address]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		a, err := tokenswap.CreateProgramAddress(f.program, seeds...)
		if err != nil {
			return errors.Wrap(err, "signer seeds")
		}
		derived[a] = true
	}

	infos := make([]*tokenswap.AccountInfo, len(ix.Accounts))
	for i, m := range ix.Accounts {
		src := findAccount(accounts, m.Key)
		if src == nil {
			return errors.Wrapf(errors.ErrNotEnoughAccounts, "account %s not passed to invoke", m.Key)
		}
		if _, ok := f.pre[m.Key]; !ok || f.exec.accounts[m.Key] != src.Account {
			return errors.Wrapf(errors.ErrInvalidInput, "account %s is not available to the caller", m.Key)
		}
		if m.IsWritable && !f.writable[m.Key] {
			return errors.Wrapf(errors.ErrPrivilege, "%s is read only for the caller", m.Key)
		}
		if m.IsSigner && !f.signer[m.Key] && !derived[m.Key] {
			return errors.Wrapf(errors.ErrPrivilege, "%s did not sign for the caller", m.Key)
		}
		infos[i] = &tokenswap.AccountInfo{
			Key:        m.Key,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    src.Account,
		}
	}

	// Changes made so far are checked with the privileges of the caller
	// before the callee takes over.
	if err := f.verify(); err != nil {
		return err
	}
	if err := f.exec.call(ctx, ix.ProgramID, infos, ix.Data, f.depth+1); err != nil {
		return err
	}
	f.snapshot()
	return nil
}

func findAccount(accounts []*tokenswap.AccountInfo, key tokenswap.Address) *tokenswap.AccountInfo {
	for _, a := range accounts {
		if a != nil && a.Key == key {
			return a
		}
	}
	return nil
}

// snapshot accepts the current state as the baseline of further checks.
func (f *frame) snapshot() {
	for _, k := range f.keys {
		f.pre[k] = f.exec.accounts[k].Clone()
	}
}

// verify checks every change made since the last snapshot against the
// privileges of the running program.
func (f *frame) verify() error {
	var preHi, preLo, postHi, postLo uint64
	for _, k := range f.keys {
		pre, post := f.pre[k], f.exec.accounts[k]
		preHi, preLo = add128(preHi, preLo, pre.Lamports)
		postHi, postLo = add128(postHi, postLo, post.Lamports)

		if pre.Equals(post) {
			continue
		}
		if !f.writable[k] {
			return errors.Wrapf(errors.ErrPrivilege, "read only account %s modified", k)
		}
		owned := pre.Owner == f.program
		if pre.Owner != post.Owner && (!owned || !isZeroed(post.Data)) {
			return errors.Wrapf(errors.ErrPrivilege, "owner of %s changed", k)
		}
		if !bytes.Equal(pre.Data, post.Data) && !owned {
			return errors.Wrapf(errors.ErrPrivilege, "data of %s modified by a program that does not own it", k)
		}
		if post.Lamports < pre.Lamports && !owned {
			return errors.Wrapf(errors.ErrPrivilege, "%s debited by a program that does not own it", k)
		}
	}
	if preHi != postHi || preLo != postLo {
		return errors.Wrap(ErrUnbalanced, f.exec.router.Name(f.program))
	}
	f.snapshot()
	return nil
}

func add128(hi, lo, v uint64) (uint64, uint64) {
	lo, carry := bits.Add64(lo, v, 0)
	return hi + carry, lo
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
