package account

import (
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

//---------------- Recovery -------------------

// Recovery is a decorator to recover from panics in routed handlers, so
// we can log them as errors instead of tearing down the whole execution.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

// Handle turns any panic from the rest of the chain into a normal error.
func (r Recovery) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg, next custody.Handler) (res *custody.CallResult, err error) {
	defer errors.Recover(&err)
	return next.Handle(ctx, db, msg)
}

//---------------- Logging -------------------

// Logging logs every routed message with its resolution and duration,
// using the logger attached to the context.
type Logging struct{}

var _ custody.Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Handle passes the message down the chain and logs the outcome.
func (l Logging) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg, next custody.Handler) (*custody.CallResult, error) {
	start := time.Now()
	res, err := next.Handle(ctx, db, msg)

	logger := custody.GetLogger(ctx).With("path", msg.Path(), "duration", time.Since(start))
	if err != nil {
		logger.With("err", err).Error("message rejected")
	} else {
		logger.Debug("message handled")
	}
	return res, err
}

//---------------- Savepoint -------------------

// Savepoint wraps the store in a cache before running the rest of the
// chain and only flushes on success. A failing handler leaves no partial
// writes behind.
type Savepoint struct{}

var _ custody.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// Handle runs the rest of the chain against a cache wrap and writes it
// out only if the handler succeeds.
func (s Savepoint) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg, next custody.Handler) (*custody.CallResult, error) {
	cdb, ok := db.(custody.CacheableKVStore)
	if !ok {
		return next.Handle(ctx, db, msg)
	}
	cache := cdb.CacheWrap()

	res, err := next.Handle(ctx, cache, msg)
	if err != nil {
		cache.Discard()
		return res, err
	}
	if werr := cache.Write(); werr != nil {
		return nil, errors.Wrap(werr, "cannot flush savepoint")
	}
	return res, nil
}
