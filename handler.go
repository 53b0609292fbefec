package custody

import (
	"reflect"
)

// Msg is a routed operation requested from the account itself, for
// example a governance mutation or an upgrade. The Selector of a
// self-directed call names the msg path, the call Args carry the
// serialized msg body.
type Msg interface {
	// Path returns the routing path of the message. Msg should be
	// created alongside the Handler that corresponds to it.
	//
	// Must be alphanumeric [0-9a-zA-Z_\-/]+
	Path() string

	// Validate performs a sanity check that does not require any state
	// access. Stateful validation belongs to the handler.
	Validate() error
}

// Handler processes one routed message. This could represent "change the
// threshold" or "replace a signer".
type Handler interface {
	Handle(ctx Context, db KVStore, msg Msg) (*CallResult, error)
}

// Decorator wraps a Handler to provide common functionality like panic
// recovery, logging or savepoint isolation, to many Handlers.
type Decorator interface {
	Handle(ctx Context, db KVStore, msg Msg, next Handler) (*CallResult, error)
}

// Registry is an interface to register your handler, the setup side of a
// router.
type Registry interface {
	Handle(path string, h Handler)
}

// Decorators holds a chain of decorators, not yet resolved by a Handler.
type Decorators struct {
	chain []Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final
Handler (often a router), returns a Handler that will execute this whole
stack.

  custody.ChainDecorators(
    account.NewRecovery(),
    account.NewLogging(),
    account.NewSavepoint(),
  ).WithHandler(
    account.NewRouter(),
  )
*/
func ChainDecorators(chain ...Decorator) Decorators {
	chain = cutoffNil(chain)
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain.
func (d Decorators) Chain(chain ...Decorator) Decorators {
	chain = cutoffNil(chain)
	newChain := append(d.chain, chain...)
	return Decorators{newChain}
}

// cutoffNil will in-place remove all nil values from given slice.
func cutoffNil(ds []Decorator) []Decorator {
	var cutoff int
	for i := 0; i < len(ds); i++ {
		ds[i-cutoff] = ds[i]
		if ds[i] == nil || (reflect.ValueOf(ds[i]).Kind() == reflect.Ptr && reflect.ValueOf(ds[i]).IsNil()) {
			cutoff++
		}
	}
	return ds[:len(ds)-cutoff]
}

// WithHandler resolves the stack and returns a concrete Handler that will
// pass through the chain of decorators before calling the final Handler.
func (d Decorators) WithHandler(h Handler) Handler {
	// Start wrapping the handler from last decorator to first one as the
	// top of the chain is understood to be executed first.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a specific Handler.
// Simplified version of a closure.
type step struct {
	d    Decorator
	next Handler
}

var _ Handler = step{}

func (s step) Handle(ctx Context, db KVStore, msg Msg) (*CallResult, error) {
	return s.d.Handle(ctx, db, msg, s.next)
}
