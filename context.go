package custody

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just the standard context, renamed so every signature in
// this module reads the same.
type Context = context.Context

// DefaultLogger is used for all contexts that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeyCaller
)

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the logger stored in the context, or DefaultLogger if
// none was set.
func GetLogger(ctx Context) log.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return logger
	}
	return DefaultLogger
}

// WithCaller sets the address on whose behalf the current call path runs.
// The account engine sets this to the account's own address before
// routing a self-directed call, which is what the governance and upgrade
// handlers test for.
func WithCaller(ctx Context, addr Address) Context {
	return context.WithValue(ctx, contextKeyCaller, addr)
}

// GetCaller returns the caller address of this context, or nil if none
// was set.
func GetCaller(ctx Context) Address {
	val, _ := ctx.Value(contextKeyCaller).(Address)
	return val
}
