package tokenswap

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/tokenswap/errors"
)

const (
	// MaxSeeds is the maximum number of seeds a derived address can be
	// built from, including the bump.
	MaxSeeds = 16
	// MaxSeedLength is the maximum size of a single seed.
	MaxSeedLength = 32

	derivedAddressMarker = "ProgramDerivedAddress"
)

// ErrOnCurve is returned when a derived address is a valid ed25519 public
// key, meaning someone could hold a private key for it.
var ErrOnCurve = errors.Register(23, "derived address is on the ed25519 curve")

// CreateProgramAddress derives an address that only given program can sign
// for. The result is a pure function of the seeds and the program.
func CreateProgramAddress(program Address, seeds ...[]byte) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, errors.Wrapf(errors.ErrInvalidInput, "%d seeds, max %d", len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return Address{}, errors.Wrapf(errors.ErrInvalidInput, "seed %d is %d bytes long", i, len(s))
		}
		h.Write(s)
	}
	h.Write(program[:])
	h.Write([]byte(derivedAddressMarker))

	var a Address
	copy(a[:], h.Sum(nil))
	if IsOnCurve(a[:]) {
		return Address{}, errors.Wrap(ErrOnCurve, a.String())
	}
	return a, nil
}

// FindProgramAddress searches for the canonical bump. It tries bump values
// from 255 down to 0, appending each as the last seed, and returns the first
// address that is not on the curve.
func FindProgramAddress(program Address, seeds ...[]byte) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Address{}, 0, errors.Wrapf(errors.ErrInvalidInput, "%d seeds leave no room for a bump", len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		a, err := CreateProgramAddress(program, withBump...)
		switch {
		case err == nil:
			return a, uint8(bump), nil
		case ErrOnCurve.Is(err):
			continue
		default:
			return Address{}, 0, err
		}
	}
	return Address{}, 0, errors.Wrap(errors.ErrNotFound, "no valid bump")
}

// IsOnCurve returns true if given 32 bytes decode into a point of the
// ed25519 curve.
func IsOnCurve(raw []byte) bool {
	if len(raw) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
