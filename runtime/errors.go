package runtime

import (
	"github.com/iov-one/tokenswap/errors"
)

// runtime reserves 30 ~ 39.
var (
	ErrCallDepth     = errors.Register(30, "call depth exceeded")
	ErrNotRentExempt = errors.Register(31, "account not rent exempt")
	ErrUnbalanced    = errors.Register(32, "lamports not conserved")
	ErrNotSigned     = errors.Register(33, "missing required signature")
)
