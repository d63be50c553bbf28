package token

import (
	"github.com/iov-one/tokenswap/errors"
)

// token reserves 40 ~ 49.
var (
	ErrUninitialized      = errors.Register(40, "uninitialized token state")
	ErrAlreadyInitialized = errors.Register(41, "token state already initialized")
	ErrMintMismatch       = errors.Register(42, "account not associated with this mint")
	ErrOwnerMismatch      = errors.Register(43, "owner does not match")
	ErrDecimalsMismatch   = errors.Register(44, "decimals do not match the mint")
	ErrNonZeroBalance     = errors.Register(45, "non-native account can only be closed if its balance is zero")
	ErrFrozen             = errors.Register(46, "account is frozen")
	ErrNoMintAuthority    = errors.Register(47, "mint has no authority")
)
