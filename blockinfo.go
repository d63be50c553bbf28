package tokenswap

import (
	"regexp"
	"time"

	"github.com/iov-one/tokenswap/errors"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID is the RegExp to ensure valid chain IDs
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// BlockInfo carries all framework-defined information down to every program
// invocation.
// For custom info that is only to be consumed within a particular
// module, or timeouts, etc, you can make use of
// context.Context. Please do not store info in there that is required
// for other code to work, rather optional context to enhance functionality
type BlockInfo struct {
	height  int64
	time    time.Time
	chainID string
	rent    Rent
	logger  log.Logger
}

// NewBlockInfo creates a BlockInfo struct with current context of where it is being executed
func NewBlockInfo(chainID string, height int64, now time.Time, rent Rent, logger log.Logger) (BlockInfo, error) {
	if !IsValidChainID(chainID) {
		return BlockInfo{}, errors.Wrap(errors.ErrInvalidInput, "chainID invalid")
	}
	if logger == nil {
		logger = DefaultLogger
	}
	return BlockInfo{
		height:  height,
		time:    now,
		chainID: chainID,
		rent:    rent,
		logger:  logger,
	}, nil
}

func (b BlockInfo) ChainID() string {
	return b.chainID
}

func (b BlockInfo) Height() int64 {
	return b.height
}

func (b BlockInfo) BlockTime() time.Time {
	return b.time
}

// Rent returns the storage deposit rules in force.
func (b BlockInfo) Rent() Rent {
	return b.rent
}

func (b BlockInfo) Logger() log.Logger {
	return b.logger
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func (b BlockInfo) WithLogInfo(keyvals ...interface{}) BlockInfo {
	b.logger = b.logger.With(keyvals...)
	return b
}
