package tokenswap

import (
	"encoding/binary"

	"github.com/iov-one/tokenswap/errors"
)

const (
	// MaxInstructionAccounts limits the number of accounts a single
	// instruction can reference.
	MaxInstructionAccounts = 64
	// MaxInstructionData limits the size of instruction data.
	MaxInstructionData = 1232
)

// Instruction is a single call of a program.
type Instruction struct {
	ProgramID Address
	Accounts  []AccountMeta
	Data      []byte
}

// Validate checks the limits of an instruction.
func (ix Instruction) Validate() error {
	if len(ix.Accounts) > MaxInstructionAccounts {
		return errors.Wrapf(errors.ErrInvalidInput, "%d accounts", len(ix.Accounts))
	}
	if len(ix.Data) > MaxInstructionData {
		return errors.Wrapf(errors.ErrInvalidInput, "%d bytes of data", len(ix.Data))
	}
	return nil
}

// Signers returns the addresses that must sign this instruction.
func (ix Instruction) Signers() []Address {
	var res []Address
	for _, m := range ix.Accounts {
		if m.IsSigner {
			res = append(res, m.Key)
		}
	}
	return res
}

// DataReader reads fixed width little endian values of instruction data.
// The first failed read is remembered and returned by Err.
type DataReader struct {
	raw []byte
	err error
}

// NewDataReader returns a reader over given instruction data.
func NewDataReader(raw []byte) *DataReader {
	return &DataReader{raw: raw}
}

func (r *DataReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.raw) < n {
		r.err = errors.Wrapf(errors.ErrInvalidInput, "instruction data too short, need %d more bytes", n-len(r.raw))
		return nil
	}
	b := r.raw[:n]
	r.raw = r.raw[n:]
	return b
}

// Uint8 reads a single byte.
func (r *DataReader) Uint8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

// Uint64 reads a little endian uint64.
func (r *DataReader) Uint64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// Address reads a 32 byte address.
func (r *DataReader) Address() Address {
	var a Address
	if b := r.take(AddressLength); b != nil {
		copy(a[:], b)
	}
	return a
}

// Fixed reads n raw bytes.
func (r *DataReader) Fixed(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// Err returns the first read error, or an error if unread bytes are left.
func (r *DataReader) Err() error {
	if r.err != nil {
		return r.err
	}
	if len(r.raw) != 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "%d trailing bytes of instruction data", len(r.raw))
	}
	return nil
}

// DataWriter builds instruction data.
type DataWriter struct {
	buf []byte
}

// NewDataWriter returns a writer that starts with the given discriminator.
func NewDataWriter(discriminator uint8) *DataWriter {
	return &DataWriter{buf: []byte{discriminator}}
}

func (w *DataWriter) Uint8(v uint8) *DataWriter {
	w.buf = append(w.buf, v)
	return w
}

func (w *DataWriter) Uint64(v uint64) *DataWriter {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *DataWriter) Address(a Address) *DataWriter {
	w.buf = append(w.buf, a[:]...)
	return w
}

// Raw appends b unchanged.
func (w *DataWriter) Raw(b []byte) *DataWriter {
	w.buf = append(w.buf, b...)
	return w
}

// Bytes returns the data written so far.
func (w *DataWriter) Bytes() []byte {
	return w.buf
}

// LE64 returns the little endian encoding of v, as used in derived address
// seeds.
func LE64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
