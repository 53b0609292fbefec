package account

import (
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Account is the authorization engine of one multi-party controlled
// account. It owns the signer registry and threshold stored in the
// mounted KVStore, verifies aggregate signatures and runs approved call
// batches. All collaborators are injected, the engine never reaches out
// on its own.
type Account struct {
	address  custody.Address
	verify   custody.SignatureVerifier
	dispatch custody.Dispatcher
	codes    custody.CodeStore
	emitter  custody.Emitter
	reg      SignerRegistry
	handler  custody.Handler
}

// NewAccount wires an account engine from its collaborators. A nil
// emitter silently drops events.
func NewAccount(
	address custody.Address,
	verify custody.SignatureVerifier,
	dispatch custody.Dispatcher,
	codes custody.CodeStore,
	emitter custody.Emitter,
) *Account {
	if emitter == nil {
		emitter = custody.NopEmitter()
	}
	r := NewRouter()
	RegisterRoutes(r, address, codes, emitter)
	handler := custody.ChainDecorators(
		NewRecovery(),
		NewLogging(),
		NewSavepoint(),
	).WithHandler(r.AsHandler())

	return &Account{
		address:  address,
		verify:   verify,
		dispatch: dispatch,
		codes:    codes,
		emitter:  emitter,
		reg:      NewSignerRegistry(),
		handler:  handler,
	}
}

// Address returns the identity this account acts under. Self-calls are
// recognized by comparing a call target against it.
func (a *Account) Address() custody.Address {
	return a.address
}

// Validate is the acceptance gate of a request. It checks the envelope
// version, the call batch shape and the aggregate signature without
// touching any state. A request must pass here before the host feeds it
// to Execute.
func (a *Account) Validate(ctx custody.Context, db custody.ReadOnlyKVStore, req custody.Request) error {
	if !custody.IsSupportedVersion(req.Version) {
		return errors.Wrapf(ErrUnsupportedVersion, "%d", req.Version)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if len(req.Calls) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no calls")
	}
	if len(req.Calls) == 1 {
		call := req.Calls[0]
		// The post-upgrade migration selector only runs as a direct
		// consequence of an upgrade, never from a submitted request.
		if call.Target.Equals(a.address) && call.Selector == PathExecuteAfterUpgrade {
			return errors.Wrapf(ErrForbiddenCall, "selector %q", call.Selector)
		}
	} else {
		// Multi-call batches must not touch the account itself. A single
		// self-call is enough for governance and upgrades, anything more
		// opens ordering games.
		for i, call := range req.Calls {
			if call.Target.Equals(a.address) {
				return errors.Wrapf(ErrForbiddenSelfCall, "call %d", i)
			}
		}
	}
	return AssertAggregate(db, a.verify, req.Hash, req.Signatures)
}

// Execute runs an accepted request. The whole batch is applied against a
// cache wrap and flushed only after every call succeeded, so a failing
// call leaves no partial state behind. A reentrancy guard on the durable
// store rejects any dispatched call that finds its way back into this
// account before the batch completes.
func (a *Account) Execute(ctx custody.Context, db custody.CacheableKVStore, req custody.Request) (results []custody.CallResult, err error) {
	if !custody.IsSupportedVersion(req.Version) {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%d", req.Version)
	}
	if err := acquireGuard(db); err != nil {
		return nil, err
	}
	defer func() {
		if rerr := releaseGuard(db); rerr != nil && err == nil {
			err = rerr
		}
	}()

	cache := db.CacheWrap()
	results = make([]custody.CallResult, 0, len(req.Calls))
	for i, call := range req.Calls {
		res, err := a.run(ctx, cache, call)
		if err != nil {
			cache.Discard()
			return nil, errors.Wrapf(err, "call %d", i)
		}
		if res == nil {
			res = &custody.CallResult{}
		}
		results = append(results, *res)
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot flush batch")
	}
	a.emitter.Emit(custody.RequestExecuted{Hash: req.Hash, Results: results})

	combined := custody.CombineResults(results)
	custody.GetLogger(ctx).With(
		"hash", fmt.Sprintf("%X", req.Hash),
		"calls", len(req.Calls),
	).Debug("request executed", "log", combined.Log)
	return results, nil
}

// run routes a single call. Self-calls decode into governance messages
// and go through the handler chain with the account as caller, everything
// else goes to the host dispatcher.
func (a *Account) run(ctx custody.Context, db custody.KVStore, call custody.Call) (*custody.CallResult, error) {
	if call.Target.Equals(a.address) {
		msg, err := decodeMsg(call)
		if err != nil {
			return nil, err
		}
		return a.handler.Handle(custody.WithCaller(ctx, a.address), db, msg)
	}
	return a.dispatch.Dispatch(ctx, db, call)
}

// ValidateDeploy checks a deployment request before any registry exists
// in durable storage. The signer list comes inline from the request and
// a single member signature is accepted, so a fresh account can pay for
// its own deployment with one approver online.
func (a *Account) ValidateDeploy(code custody.CodeID, salt []byte, threshold int, signers []custody.SignerID, hash []byte, sigs []custody.SignerSignature) error {
	if err := code.Validate(); err != nil {
		return err
	}
	if len(salt) == 0 {
		return errors.Wrap(errors.ErrEmpty, "salt")
	}
	if err := validateSigners(signers); err != nil {
		return err
	}
	for i, id := range signers {
		for _, other := range signers[i+1:] {
			if id.Equals(other) {
				return errors.Wrapf(ErrDuplicateSigner, "%s", id)
			}
		}
	}
	if err := validateConfiguration(threshold, len(signers)); err != nil {
		return err
	}
	return AssertSingleSignerSignature(a.verify, signers, hash, sigs)
}

// Threshold returns the number of approvals a request needs.
func (a *Account) Threshold(db custody.ReadOnlyKVStore) (int, error) {
	return Threshold(db)
}

// Signers returns all registry members in insertion order.
func (a *Account) Signers(db custody.ReadOnlyKVStore) ([]custody.SignerID, error) {
	return a.reg.List(db)
}

// IsSigner reports registry membership.
func (a *Account) IsSigner(db custody.ReadOnlyKVStore, id custody.SignerID) (bool, error) {
	return a.reg.IsSigner(db, id)
}

// Version returns the version of the active code, or the zero version
// when the account never adopted any code.
func (a *Account) Version(db custody.ReadOnlyKVStore) (custody.Version, error) {
	return activeVersion(db, a.codes)
}

// Name returns the configured human readable account name.
func (a *Account) Name(db custody.ReadOnlyKVStore) (string, error) {
	return Name(db)
}

// acquireGuard marks the execution path active. It must be called on the
// outer store, not a cache wrap, so a nested execution observes the flag
// through read-through.
func acquireGuard(db custody.KVStore) error {
	set, err := db.Has(keyGuard)
	if err != nil {
		return errors.Wrap(err, "guard")
	}
	if set {
		return errors.Wrap(ErrReentrantCall, "execution in progress")
	}
	if err := db.Set(keyGuard, []byte{1}); err != nil {
		return errors.Wrap(err, "guard")
	}
	return nil
}

func releaseGuard(db custody.KVStore) error {
	if err := db.Delete(keyGuard); err != nil {
		return errors.Wrap(err, "guard")
	}
	return nil
}
