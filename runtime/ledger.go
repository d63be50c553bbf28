package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	modeSubmit   = "submit"
	modeSimulate = "simulate"
)

// Result describes an executed transaction.
type Result struct {
	// Height is the version of the state the transaction was committed
	// in. Simulations report the height they would have been committed
	// at.
	Height int64
	Hash   []byte
	// Signers are the verified signers of the transaction.
	Signers []tokenswap.Address
	// Changed lists the accounts modified by the transaction, in the
	// state after execution.
	Changed []KeyedAccount
}

// Ledger executes transactions against the account state. Every submitted
// transaction is executed and committed in isolation: submissions are
// serialised and a failing transaction leaves no trace.
//
// Ledger is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	store   *CommitStore
	router  *Router
	chainID string
	rent    tokenswap.Rent
	logger  log.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger, a nop logger is used by default.
func WithLogger(logger log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithMetrics enables collecting statistics.
func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithClock overrides the source of block time.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger loads the latest committed state of db.
func NewLedger(db tokenswap.CommitKVStore, router *Router, opts ...Option) (*Ledger, error) {
	cs, err := NewCommitStore(db)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		store:  cs,
		router: router,
		logger: tokenswap.DefaultLogger,
		now:    time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	l.logger = l.logger.With("module", "ledger")

	if l.chainID, err = loadChainID(cs.DeliverStore()); err != nil {
		return nil, err
	}
	if l.rent, err = loadRent(cs.DeliverStore()); err != nil {
		return nil, err
	}
	return l, nil
}

// Close releases the store. The ledger must not be used afterwards.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}

// ChainID returns the chain id set at genesis, or an empty string for an
// uninitialized ledger.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Rent returns the storage deposit rules.
func (l *Ledger) Rent() tokenswap.Rent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rent
}

// Height returns the version of the last committed state.
func (l *Ledger) Height() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, err := l.store.CommitInfo()
	return id.Version, err
}

// InitChain stores the chain id, loads the genesis state through init and
// commits it. It fails if the ledger was already initialized.
func (l *Ledger) InitChain(chainID string, opts tokenswap.Options, init tokenswap.Initializer) (tokenswap.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return tokenswap.CommitID{}, errors.Wrapf(errors.ErrInvalidState, "already initialized for chain %s", l.chainID)
	}
	db := l.store.DeliverStore()
	rent := tokenswap.DefaultRent
	if err := opts.ReadOptions("rent", &rent); err != nil {
		return tokenswap.CommitID{}, errors.Wrapf(errors.ErrInvalidInput, "rent: %s", err)
	}
	if err := saveChainID(db, chainID); err != nil {
		return tokenswap.CommitID{}, err
	}
	if err := saveRent(db, rent); err != nil {
		return tokenswap.CommitID{}, err
	}
	if init != nil {
		if err := init.FromGenesis(opts, NewAccountStore(db)); err != nil {
			return tokenswap.CommitID{}, errors.Wrap(err, "genesis")
		}
	}
	id, err := l.store.Commit()
	if err != nil {
		return id, err
	}
	l.chainID = chainID
	l.rent = rent
	l.logger.Info("genesis loaded", "chain_id", chainID, "height", id.Version)
	return id, nil
}

// Submit executes the transaction and commits its effects.
func (l *Ledger) Submit(ctx context.Context, tx *Tx) (res *Result, err error) {
	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	defer func() { l.metrics.observeTx(modeSubmit, err, start) }()

	cache := l.store.DeliverStore().CacheWrap()
	res, err = l.run(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		code, msg := errors.Result(err, false)
		l.logger.Info("tx rejected", "code", code, "log", msg)
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write tx cache")
	}
	id, err := l.store.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	res.Height, res.Hash = id.Version, id.Hash
	l.logger.Info("tx committed", "height", id.Version, "instructions", len(tx.Instructions), "changed", len(res.Changed))
	return res, nil
}

// Simulate executes the transaction without committing anything.
func (l *Ledger) Simulate(ctx context.Context, tx *Tx) (res *Result, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer func() { l.metrics.observeTx(modeSimulate, err, time.Time{}) }()

	cache := l.store.CheckStore().CacheWrap()
	defer cache.Discard()
	return l.run(tokenswap.WithSimulation(ctx), cache, tx)
}

func (l *Ledger) run(ctx context.Context, db tokenswap.KVStore, tx *Tx) (*Result, error) {
	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "ledger not initialized")
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	last, err := l.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	info, err := tokenswap.NewBlockInfo(l.chainID, last.Version+1, l.now(), l.rent, l.logger)
	if err != nil {
		return nil, err
	}
	ctx = tokenswap.WithLogger(ctx, info.Logger())

	signers, err := sigs.VerifyTxSignatures(db, tx, l.chainID)
	if err != nil {
		return nil, err
	}
	signed := make(map[tokenswap.Address]bool, len(signers))
	for _, s := range signers {
		signed[s] = true
	}

	exec := newExecutor(l.router, info, db)
	for i, ix := range tx.Instructions {
		err := exec.execute(ctx, ix, signed)
		l.metrics.observeInstruction(l.router.Name(ix.ProgramID), err)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
	}

	changed := exec.changes()
	for _, c := range changed {
		if c.Lamports > 0 && len(c.Data) > 0 && !l.rent.IsExempt(c.Lamports, len(c.Data)) {
			return nil, errors.Wrapf(ErrNotRentExempt, "%s holds %d lamports, needs %d",
				c.Key, c.Lamports, l.rent.MinimumBalance(len(c.Data)))
		}
		if err := exec.bucket.Save(db, c.Key, c.Account); err != nil {
			return nil, errors.Wrapf(err, "save %s", c.Key)
		}
	}
	return &Result{Height: info.Height(), Signers: signers, Changed: changed}, nil
}

// Account returns the committed state of an account. An address that holds
// nothing reads as an empty system owned account.
func (l *Ledger) Account(key tokenswap.Address) (*tokenswap.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NewAccountBucket().Get(l.store.DeliverStore(), key)
}

// AccountsByOwner returns all committed accounts owned by given program.
func (l *Ledger) AccountsByOwner(owner tokenswap.Address) ([]KeyedAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NewAccountBucket().ByOwner(l.store.DeliverStore(), owner)
}

// NextNonce returns the sequence the next signature of signer must use.
func (l *Ledger) NextNonce(signer tokenswap.Address) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sigs.NextNonce(l.store.DeliverStore(), signer)
}

// View calls fn with read access to the committed state. fn must not keep
// a reference to the store once it returns.
func (l *Ledger) View(fn func(db tokenswap.ReadOnlyKVStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.store.DeliverStore())
}
