package system

import (
	"github.com/iov-one/tokenswap/errors"
)

// system program reserves 50 ~ 59.
var (
	ErrNotSystemOwned = errors.Register(50, "account not owned by the system program")
)
