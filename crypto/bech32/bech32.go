// Package bech32 encodes account addresses in the human readable bech32
// form, for example tswp1qypqxpq9...
package bech32

import (
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/tokenswap/errors"
)

// DefaultHRP is the human readable part used by the command line.
const DefaultHRP = "tswp"

// AddressLength is the payload size of every encoded address.
const AddressLength = 32

// EncodeAddress returns the bech32 form of a 32 byte address.
func EncodeAddress(hrp string, addr []byte) (string, error) {
	if len(addr) != AddressLength {
		return "", errors.Wrapf(errors.ErrInvalidInput, "address is %d bytes", len(addr))
	}
	if hrp == "" || strings.ToLower(hrp) != hrp {
		return "", errors.Wrapf(errors.ErrInvalidInput, "human readable part %q", hrp)
	}
	words, err := bech32.ConvertBits(addr, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	enc, err := bech32.Encode(hrp, words)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return enc, nil
}

// DecodeAddress parses the bech32 form of an address. When hrp is not empty
// the encoded human readable part must match it.
func DecodeAddress(enc, hrp string) ([]byte, error) {
	gotHRP, words, err := bech32.Decode(enc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if hrp != "" && gotHRP != hrp {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "human readable part %q, want %q", gotHRP, hrp)
	}
	addr, err := bech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if len(addr) != AddressLength {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "address is %d bytes", len(addr))
	}
	return addr, nil
}
