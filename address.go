package tokenswap

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iov-one/tokenswap/crypto/bech32"
	"github.com/iov-one/tokenswap/errors"
	"github.com/mr-tron/base58"
)

// AddressLength is the length of all addresses. An address is either an
// ed25519 public key or a program derived address.
const AddressLength = 32

var (
	// it must have (?s) flags, otherwise it errors when last section contains 0x20 (newline)
	perm = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,16})/([a-zA-Z0-9_\-]{3,16})/(.+)$`)
)

// Condition is a specially formatted array, containing
// information on what an address was derived from.
// It is of the format:
//
//   sprintf("%s/%s/%s", extension, type, data)
type Condition []byte

func NewCondition(ext, typ string, data []byte) Condition {
	pre := fmt.Sprintf("%s/%s/", ext, typ)
	return append([]byte(pre), data...)
}

// Parse will extract the sections from the Condition bytes
// and verify it is properly formatted
func (c Condition) Parse() (string, string, []byte, error) {
	chunks := perm.FindSubmatch(c)
	if len(chunks) == 0 {
		return "", "", nil, errors.Wrapf(errors.ErrInvalidInput, "condition: %X", []byte(c))
	}
	// returns [all, match1, match2, match3]
	return string(chunks[1]), string(chunks[2]), chunks[3], nil
}

// Address will convert a Condition into an Address
func (c Condition) Address() Address {
	return NewAddress(c)
}

// Equals checks if two permissions are the same
func (c Condition) Equals(b Condition) bool {
	return bytes.Equal(c, b)
}

// String returns a human readable string.
// We keep the extension and type in ascii and
// hex-encode the binary data
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// Validate returns an error if the Condition is not the proper format
func (c Condition) Validate() error {
	if !perm.Match(c) {
		return errors.Wrapf(errors.ErrInvalidInput, "condition: %X", []byte(c))
	}
	return nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	var serialized string
	if c != nil {
		serialized = c.String()
	}
	return json.Marshal(serialized)
}

func (c *Condition) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	return c.deserialize(enc)
}

// deserialize from human readable string.
func (c *Condition) deserialize(source string) error {
	// No value zero the condition.
	if len(source) == 0 {
		*c = nil
		return nil
	}

	args := strings.Split(source, "/")
	if len(args) != 3 {
		return errors.Wrap(errors.ErrInvalidInput, "invalid condition format")
	}
	data, err := hex.DecodeString(args[2])
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "malformed condition data: %s", err)
	}
	*c = NewCondition(args[0], args[1], data)
	return nil
}

// Address identifies an account on the ledger. It is a 32 byte value,
// either a public key or a digest that no key can sign for.
type Address [AddressLength]byte

// SystemProgramID is the all zero address. It owns every account that no
// other program claimed.
var SystemProgramID Address

// NewAddress hashes data into an address.
func NewAddress(data []byte) Address {
	return Address(sha256.Sum256(data))
}

// ProgramAddress returns the identifier of the program with the given name.
func ProgramAddress(name string) Address {
	return NewCondition("tokenswap", "program", []byte(name)).Address()
}

// AddressFromBytes copies raw into an address, failing when the length does
// not match.
func AddressFromBytes(raw []byte) (Address, error) {
	var a Address
	if len(raw) != AddressLength {
		return a, errors.Wrapf(errors.ErrInvalidInput, "address length %d", len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// Bytes returns a copy of the address content.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return a == b
}

// IsZero returns true for the all zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the base58 representation.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bech32 returns the bech32 representation using given human readable part.
func (a Address) Bech32(hrp string) (string, error) {
	return bech32.EncodeAddress(hrp, a[:])
}

// MarshalJSON provides a base58 representation for JSON,
// to override the standard array encoding
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes the textual form of an address. Base58 is the
// default, a "hex:", "bech32:" or "cond:" prefix selects another decoding.
// An empty string is the zero address.
func ParseAddress(enc string) (Address, error) {
	// If the encoded string starts with a prefix, cut it off and use
	// specified decoding method instead of default one.
	format := "base58"
	if chunks := strings.SplitN(enc, ":", 2); len(chunks) == 2 {
		format, enc = chunks[0], chunks[1]
	}

	if len(enc) == 0 {
		return Address{}, nil
	}

	switch format {
	case "base58":
		val, err := base58.Decode(enc)
		if err != nil {
			return Address{}, errors.Wrapf(errors.ErrInvalidInput, "cannot decode base58: %s", err)
		}
		return AddressFromBytes(val)
	case "hex":
		val, err := hex.DecodeString(enc)
		if err != nil {
			return Address{}, errors.Wrapf(errors.ErrInvalidInput, "cannot decode hex: %s", err)
		}
		return AddressFromBytes(val)
	case "cond":
		var c Condition
		if err := c.deserialize(enc); err != nil {
			return Address{}, err
		}
		if err := c.Validate(); err != nil {
			return Address{}, err
		}
		return c.Address(), nil
	case "bech32":
		val, err := bech32.DecodeAddress(enc, "")
		if err != nil {
			return Address{}, err
		}
		return AddressFromBytes(val)
	default:
		return Address{}, errors.Wrapf(errors.ErrInvalidType, "unknown format %q", format)
	}
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(enc string) Address {
	a, err := ParseAddress(enc)
	if err != nil {
		panic(err)
	}
	return a
}
