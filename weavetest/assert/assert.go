// Package assert holds the small set of fatal assertions used by the ledger
// and program tests. Every helper stops the test on the first failure.
package assert

import (
	"bytes"
	"encoding/hex"
	"reflect"

	"github.com/iov-one/tokenswap/errors"
)

// Tester is implemented by *testing.T and *testing.B.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test unless value is nil or a typed nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if value == nil {
		return
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		if v.IsNil() {
			return
		}
	}
	// %+v prints the stack of a wrapped error.
	t.Fatalf("want nil, got %+v", value)
}

// Equal fails the test if want and got are not deeply equal. Byte slices and
// byte arrays (addresses, keys, account data) are reported as hex.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	w, wok := rawBytes(want)
	g, gok := rawBytes(got)
	if wok && gok {
		if bytes.Equal(w, g) && reflect.TypeOf(want) == reflect.TypeOf(got) {
			return
		}
		t.Fatalf("bytes differ\nwant %T %s\n got %T %s", want, hex.EncodeToString(w), got, hex.EncodeToString(g))
	}
	t.Fatalf("values differ\nwant %T %v\n got %T %v", want, want, got, got)
}

func rawBytes(v interface{}) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	b := make([]byte, rv.Len())
	reflect.Copy(reflect.ValueOf(b), rv)
	return b, true
}

// IsErr fails the test unless got matches want. A registered *errors.Error
// matches anything wrapping it. Any other want must be got itself.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(*errors.Error); ok {
		if kind.Is(got) {
			return
		}
		t.Fatalf("want %s error, got %+v", kindName(kind), got)
	}
	t.Fatalf("want %v, got %+v", want, got)
}

func kindName(e *errors.Error) string {
	if e == nil {
		return "no"
	}
	return e.Error()
}

// Panics fails the test if fn returns without panicking.
func Panics(t Tester, fn func()) {
	t.Helper()
	if recovered(fn) == nil {
		t.Fatal("want a panic")
	}
}

// PanicsWith is Panics that also requires the panic value to be an error
// matching want.
func PanicsWith(t Tester, want *errors.Error, fn func()) {
	t.Helper()
	r := recovered(fn)
	if r == nil {
		t.Fatal("want a panic")
	}
	err, ok := r.(error)
	if !ok {
		t.Fatalf("want an error panic, got %T %v", r, r)
	}
	IsErr(t, want, err)
}

func recovered(fn func()) (r interface{}) {
	defer func() { r = recover() }()
	fn()
	return nil
}
