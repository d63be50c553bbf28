package token

import (
	"math/big"

	"github.com/iov-one/tokenswap/errors"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a raw token amount in whole units of a mint with
// given decimals, for example 1500 with 3 decimals is "1.5".
func FormatAmount(amount uint64, decimals uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.String()
}

// ParseAmount converts a decimal string in whole units into the raw token
// amount. More fractional digits than the mint supports are rejected.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidAmount, "%q: %s", s, err)
	}
	if d.IsNegative() {
		return 0, errors.Wrapf(errors.ErrInvalidAmount, "negative amount %s", s)
	}
	raw := d.Shift(int32(decimals))
	if !raw.Equal(raw.Truncate(0)) {
		return 0, errors.Wrapf(errors.ErrInvalidAmount, "%s has more than %d decimals", s, decimals)
	}
	n := raw.BigInt()
	if !n.IsUint64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "amount %s", s)
	}
	return n.Uint64(), nil
}
