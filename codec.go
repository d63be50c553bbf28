package tokenswap

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tokenswap/errors"
)

// Wire types used by the transaction encoding.
const (
	WireVarint = proto.WireVarint
	WireBytes  = proto.WireBytes
)

// Marshaller is anything that can be represented in binary
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// MustMarshal is like Marshal but panics on error.
func MustMarshal(obj Marshaller) []byte {
	bz, err := obj.Marshal()
	if err != nil {
		panic(err)
	}
	return bz
}

// FieldWriter appends protobuf encoded fields.
type FieldWriter struct {
	buf *proto.Buffer
	err error
}

// NewFieldWriter returns an empty writer.
func NewFieldWriter() *FieldWriter {
	return &FieldWriter{buf: proto.NewBuffer(nil)}
}

// Varint appends a varint field. Zero values are omitted.
func (w *FieldWriter) Varint(field int, v uint64) *FieldWriter {
	if v == 0 || w.err != nil {
		return w
	}
	if w.err = w.buf.EncodeVarint(uint64(field)<<3 | proto.WireVarint); w.err == nil {
		w.err = w.buf.EncodeVarint(v)
	}
	return w
}

// Bytes appends a length delimited field. Empty values are omitted.
func (w *FieldWriter) Bytes(field int, v []byte) *FieldWriter {
	if len(v) == 0 || w.err != nil {
		return w
	}
	if w.err = w.buf.EncodeVarint(uint64(field)<<3 | proto.WireBytes); w.err == nil {
		w.err = w.buf.EncodeRawBytes(v)
	}
	return w
}

// Message appends an embedded message field. Unlike Bytes, an empty
// message is still written so that repeated fields keep their count.
func (w *FieldWriter) Message(field int, m Marshaller) *FieldWriter {
	if w.err != nil {
		return w
	}
	raw, err := m.Marshal()
	if err != nil {
		w.err = err
		return w
	}
	if w.err = w.buf.EncodeVarint(uint64(field)<<3 | proto.WireBytes); w.err == nil {
		w.err = w.buf.EncodeRawBytes(raw)
	}
	return w
}

// Result returns the encoded fields or the first encoding error.
func (w *FieldWriter) Result() ([]byte, error) {
	if w.err != nil {
		return nil, errors.Wrap(w.err, "encode")
	}
	return w.buf.Bytes(), nil
}

// FieldReader iterates over protobuf encoded fields.
type FieldReader struct {
	raw []byte
}

// NewFieldReader returns a reader over the encoded message.
func NewFieldReader(raw []byte) *FieldReader {
	return &FieldReader{raw: raw}
}

// More returns true while unread fields are left.
func (r *FieldReader) More() bool {
	return len(r.raw) > 0
}

func (r *FieldReader) varint() (uint64, error) {
	v, n := proto.DecodeVarint(r.raw)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrInvalidInput, "malformed varint")
	}
	r.raw = r.raw[n:]
	return v, nil
}

// Next reads the header of the next field.
func (r *FieldReader) Next() (field int, wireType int, err error) {
	tag, err := r.varint()
	if err != nil {
		return 0, 0, err
	}
	field, wireType = int(tag>>3), int(tag&7)
	if field <= 0 {
		return 0, 0, errors.Wrapf(errors.ErrInvalidInput, "illegal tag %d", tag)
	}
	// Only varint and length delimited fields are ever written.
	if wireType != WireVarint && wireType != WireBytes {
		return 0, 0, errors.Wrapf(errors.ErrInvalidInput, "field %d: unsupported wire type %d", field, wireType)
	}
	return field, wireType, nil
}

// Varint reads the value of a varint field.
func (r *FieldReader) Varint() (uint64, error) {
	return r.varint()
}

// Bytes reads the value of a length delimited field. The result is a copy.
func (r *FieldReader) Bytes() ([]byte, error) {
	l, err := r.varint()
	if err != nil {
		return nil, err
	}
	if uint64(len(r.raw)) < l {
		return nil, errors.Wrap(errors.ErrInvalidInput, "truncated field")
	}
	b := append([]byte(nil), r.raw[:l]...)
	r.raw = r.raw[l:]
	return b, nil
}

// Expect returns an error if the wire type does not match.
func Expect(field, wireType, want int) error {
	if wireType != want {
		return errors.Wrapf(errors.ErrInvalidInput, "field %d: wire type %d, want %d", field, wireType, want)
	}
	return nil
}
