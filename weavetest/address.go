package weavetest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/tokenswap"
)

// ParseAddress takes an address in a human readable format and returns
// its binary representation. This function is a test helper that is using
// tokenswap.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) tokenswap.Address {
	t.Helper()

	addr, err := tokenswap.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// RandomAddr returns a random address generated on the fly. It is not
// guaranteed to be off the curve.
func RandomAddr(t testing.TB) tokenswap.Address {
	var a tokenswap.Address
	if _, err := rand.Read(a[:]); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return a
}
