package escrow

import (
	"github.com/iov-one/tokenswap/errors"
)

// Result codes
// escrow takes 1010-1020
var (
	ErrInvalidAmount       = errors.Register(1010, "amount must be greater than zero")
	ErrIdenticalMints      = errors.Register(1011, "deposit and receive mints must differ")
	ErrRecordAlreadyExists = errors.Register(1012, "escrow record already exists")
	ErrAccountMismatch     = errors.Register(1013, "account does not match escrow terms")
	ErrUnauthorized        = errors.Register(1014, "signer not authorized")
	ErrInsufficientBalance = errors.Register(1015, "insufficient balance")
	ErrRecordNotFound      = errors.Register(1016, "escrow record not found")
)
