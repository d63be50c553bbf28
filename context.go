package tokenswap

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeySimulation
)

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set.
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithSimulation marks a context of a transaction that will never be
// committed.
func WithSimulation(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeySimulation, true)
}

// IsSimulation returns true if the transaction executed within given
// context is only simulated.
func IsSimulation(ctx context.Context) bool {
	v, _ := ctx.Value(contextKeySimulation).(bool)
	return v
}
