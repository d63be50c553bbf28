package p256vault

import (
	"github.com/iov-one/tokenswap/errors"
)

// p256vault reserves 70 ~ 79.
var (
	ErrSignature     = errors.Register(70, "invalid p256 signature")
	ErrPayerMismatch = errors.Register(71, "authorization issued for another payer")
	ErrExpired       = errors.Register(72, "authorization expired")
)
