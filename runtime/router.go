package runtime

import (
	"fmt"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Named is implemented by programs that provide a human readable name used
// in logs and metrics.
type Named interface {
	Name() string
}

// Router dispatches instructions to the registered programs.
type Router struct {
	programs map[tokenswap.Address]tokenswap.Program
}

var _ tokenswap.Registry = (*Router)(nil)

// NewRouter returns a router without any program.
func NewRouter() *Router {
	return &Router{programs: make(map[tokenswap.Address]tokenswap.Program)}
}

// Register adds a program. It panics if a program with the same id is
// already registered.
func (r *Router) Register(p tokenswap.Program) {
	id := p.ID()
	if _, ok := r.programs[id]; ok {
		panic(fmt.Sprintf("program %s registered twice", id))
	}
	r.programs[id] = p
}

// Program returns the program registered under given id.
func (r *Router) Program(id tokenswap.Address) (tokenswap.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrProgram, "no program %s", id)
	}
	return p, nil
}

// Name returns the name of the program, or its address if it has none.
func (r *Router) Name(id tokenswap.Address) string {
	if n, ok := r.programs[id].(Named); ok {
		return n.Name()
	}
	return id.String()
}
