package runtime

import (
	"context"
	"testing"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/weavetest/assert"
)

type namedProgram string

func (p namedProgram) ID() tokenswap.Address {
	return tokenswap.ProgramAddress(string(p))
}

func (p namedProgram) Name() string {
	return string(p)
}

func (namedProgram) Process(context.Context, tokenswap.BlockInfo, tokenswap.Invoker, []*tokenswap.AccountInfo, []byte) error {
	return nil
}

type anonymousProgram struct{}

func (anonymousProgram) ID() tokenswap.Address {
	return tokenswap.Address{42}
}

func (anonymousProgram) Process(context.Context, tokenswap.BlockInfo, tokenswap.Invoker, []*tokenswap.AccountInfo, []byte) error {
	return nil
}

func TestRouter(t *testing.T) {
	r := NewRouter()
	r.Register(namedProgram("first"))
	r.Register(anonymousProgram{})

	p, err := r.Program(tokenswap.ProgramAddress("first"))
	assert.Nil(t, err)
	assert.Equal(t, namedProgram("first"), p)

	_, err = r.Program(tokenswap.ProgramAddress("second"))
	assert.IsErr(t, errors.ErrProgram, err)

	assert.Equal(t, "first", r.Name(tokenswap.ProgramAddress("first")))
	assert.Equal(t, tokenswap.Address{42}.String(), r.Name(tokenswap.Address{42}))

	assert.Panics(t, func() { r.Register(namedProgram("first")) })
}
