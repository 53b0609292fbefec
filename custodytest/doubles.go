// Package custodytest provides test doubles for the account engine
// collaborators. None of them are safe for concurrent use.
package custodytest

import (
	"sort"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
)

// Approve signs the hash with every key and returns the signature list in
// the canonical strictly ascending signer order, regardless of the order
// the keys were given in.
func Approve(t testing, hash []byte, keys ...crypto.PrivateKey) []custody.SignerSignature {
	t.Helper()

	sigs := make([]custody.SignerSignature, len(keys))
	for i, key := range keys {
		r, s, err := key.Sign(hash)
		if err != nil {
			t.Fatalf("cannot sign: %+v", err)
		}
		sigs[i] = custody.SignerSignature{Signer: key.SignerID(), R: r, S: s}
	}
	sort.Slice(sigs, func(i, j int) bool {
		return sigs[i].Signer.Compare(sigs[j].Signer) < 0
	})
	return sigs
}

// testing is the subset of testing.TB used by this package. An interface
// avoids the testing import in non test binaries.
type testing interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// Dispatcher is a configurable custody.Dispatcher that records every
// dispatched call.
type Dispatcher struct {
	// Calls collects everything dispatched, in order.
	Calls []custody.Call

	// Err is returned for every dispatch when set.
	Err error

	// Handler, when set, processes the call instead of the canned result.
	// It enables reentrancy scenarios where a dispatched call runs back
	// into the account.
	Handler func(ctx custody.Context, db custody.KVStore, call custody.Call) (*custody.CallResult, error)
}

var _ custody.Dispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) Dispatch(ctx custody.Context, db custody.KVStore, call custody.Call) (*custody.CallResult, error) {
	d.Calls = append(d.Calls, call)
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Handler != nil {
		return d.Handler(ctx, db, call)
	}
	return &custody.CallResult{Data: []byte("ok")}, nil
}

// Emitter captures all emitted events for inspection.
type Emitter struct {
	Events []custody.Event
}

var _ custody.Emitter = (*Emitter)(nil)

func (e *Emitter) Emit(ev custody.Event) {
	e.Events = append(e.Events, ev)
}

// Code is a configurable custody.Code stub.
type Code struct {
	CodeID   custody.CodeID
	Supports []custody.InterfaceID
	Ver      custody.Version

	// MigrateFn, when set, runs as the migration callback.
	MigrateFn func(ctx custody.Context, db custody.KVStore, previous custody.Version, data []byte) error

	// Migrations counts callback invocations.
	Migrations int
}

var _ custody.Code = (*Code)(nil)

func (c *Code) ID() custody.CodeID {
	return c.CodeID
}

func (c *Code) SupportsInterface(id custody.InterfaceID) bool {
	for _, s := range c.Supports {
		if s == id {
			return true
		}
	}
	return false
}

func (c *Code) Version() custody.Version {
	return c.Ver
}

func (c *Code) Migrate(ctx custody.Context, db custody.KVStore, previous custody.Version, data []byte) error {
	c.Migrations++
	if c.MigrateFn != nil {
		return c.MigrateFn(ctx, db, previous, data)
	}
	return nil
}

// CodeStore is an in-memory custody.CodeStore.
type CodeStore map[string]custody.Code

var _ custody.CodeStore = (CodeStore)(nil)

// NewCodeStore indexes the given codes by their identifier.
func NewCodeStore(codes ...custody.Code) CodeStore {
	s := make(CodeStore, len(codes))
	for _, c := range codes {
		s[string(c.ID())] = c
	}
	return s
}

func (s CodeStore) Lookup(id custody.CodeID) (custody.Code, error) {
	if c, ok := s[string(id)]; ok {
		return c, nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "code %s", id)
}
