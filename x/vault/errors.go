package vault

import (
	"github.com/iov-one/tokenswap/errors"
)

// vault reserves 60 ~ 69.
var (
	ErrVaultInUse = errors.Register(60, "vault already holds lamports")
	ErrVaultEmpty = errors.Register(61, "vault is empty")
)
