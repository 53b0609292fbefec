package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/store/iavl"
)

var errBoom = errors.Wrap(errors.ErrState, "boom")

type fixture struct {
	db       custody.CacheableKVStore
	acc      *Account
	keys     []crypto.PrivateKey
	dispatch *custodytest.Dispatcher
	emitter  *custodytest.Emitter
	codes    custodytest.CodeStore
}

// newFixture builds an account with three registered signers and a
// threshold of two.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := store.MemStore()
	keys := []crypto.PrivateKey{seedKey(t, 1), seedKey(t, 2), seedKey(t, 3)}
	ids := make([]custody.SignerID, len(keys))
	for i, k := range keys {
		ids[i] = k.SignerID()
	}
	require.NoError(t, NewSignerRegistry().Add(db, ids, nil))
	require.NoError(t, setThreshold(db, 2))

	dispatch := &custodytest.Dispatcher{}
	emitter := &custodytest.Emitter{}
	codes := custodytest.NewCodeStore()
	acc := NewAccount(selfAddr, crypto.Ed25519Verifier{}, dispatch, codes, emitter)

	return &fixture{db: db, acc: acc, keys: keys, dispatch: dispatch, emitter: emitter, codes: codes}
}

func (f *fixture) request(t *testing.T, calls ...custody.Call) custody.Request {
	t.Helper()
	hash := []byte("request-hash")
	return custody.Request{
		Version:    1,
		Hash:       hash,
		Signatures: custodytest.Approve(t, hash, f.keys[0], f.keys[1]),
		Calls:      calls,
	}
}

func externalCall(selector string) custody.Call {
	return custody.Call{
		Target:   custody.NewAddress([]byte("some-contract")),
		Selector: selector,
		Args:     []byte("payload"),
	}
}

func TestValidateAcceptsApprovedBatch(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, externalCall("transfer"), externalCall("ping"))
	require.NoError(t, f.acc.Validate(context.Background(), f.db, req))
}

func TestValidateAcceptsEstimateVariant(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, externalCall("transfer"))
	req.Version = 2 | custody.RequestVersionFlagEstimate
	require.NoError(t, f.acc.Validate(context.Background(), f.db, req))
}

func TestValidateRejectsUnsupportedVersion(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, externalCall("transfer"))
	req.Version = 4
	err := f.acc.Validate(context.Background(), f.db, req)
	assert.True(t, ErrUnsupportedVersion.Is(err))
}

func TestValidateRejectsReservedSelector(t *testing.T) {
	f := newFixture(t)
	call, err := NewSelfCall(selfAddr, &ExecuteAfterUpgradeMsg{})
	require.NoError(t, err)
	req := f.request(t, call)
	err = f.acc.Validate(context.Background(), f.db, req)
	assert.True(t, ErrForbiddenCall.Is(err))
}

func TestValidateRejectsSelfCallInBatch(t *testing.T) {
	f := newFixture(t)
	call, err := NewSelfCall(selfAddr, &SetThresholdMsg{Threshold: 1})
	require.NoError(t, err)

	// A single self-call is fine.
	require.NoError(t, f.acc.Validate(context.Background(), f.db, f.request(t, call)))

	// The same call next to any other call is not.
	err = f.acc.Validate(context.Background(), f.db, f.request(t, call, externalCall("transfer")))
	assert.True(t, ErrForbiddenSelfCall.Is(err))
	err = f.acc.Validate(context.Background(), f.db, f.request(t, externalCall("transfer"), call))
	assert.True(t, ErrForbiddenSelfCall.Is(err))
}

func TestValidateRejectsBadAggregate(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, externalCall("transfer"))
	req.Signatures = custodytest.Approve(t, []byte("other-hash"), f.keys[0], f.keys[1])
	err := f.acc.Validate(context.Background(), f.db, req)
	assert.True(t, ErrInvalidSignature.Is(err))
}

func TestValidateRejectsUnsignedRequestOnFreshStore(t *testing.T) {
	// An account whose state was never seeded must reject everything, in
	// particular a request carrying no signatures at all.
	db := store.MemStore()
	acc := NewAccount(selfAddr, crypto.Ed25519Verifier{}, &custodytest.Dispatcher{}, custodytest.NewCodeStore(), nil)

	req := custody.Request{
		Version: 1,
		Hash:    []byte("request-hash"),
		Calls:   []custody.Call{externalCall("drain")},
	}
	err := acc.Validate(context.Background(), db, req)
	assert.True(t, errors.ErrState.Is(err))
}

func TestExecuteFailedGovernanceLeavesStateUntouched(t *testing.T) {
	// A governance operation that fails inside the pipeline must not
	// leave any partial mutation behind: the registry shrink of a
	// RemoveSigners whose new threshold cannot be satisfied is rolled
	// back together with the rest of the call.
	f := newFixture(t)
	before, err := f.acc.Signers(f.db)
	require.NoError(t, err)
	require.Len(t, before, 3)

	call, err := NewSelfCall(selfAddr, &RemoveSignersMsg{
		Threshold: 3,
		Signers:   []custody.SignerID{f.keys[2].SignerID()},
	})
	require.NoError(t, err)

	_, err = f.acc.Execute(context.Background(), f.db, f.request(t, call))
	require.Error(t, err)
	assert.True(t, ErrInvalidThreshold.Is(err))

	after, err := f.acc.Signers(f.db)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	threshold, err := f.acc.Threshold(f.db)
	require.NoError(t, err)
	assert.Equal(t, 2, threshold)
	assert.Empty(t, f.emitter.Events)
}

func TestExecuteDispatchesBatch(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, externalCall("transfer"), externalCall("ping"))

	results, err := f.acc.Execute(context.Background(), f.db, req)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, f.dispatch.Calls, 2)
	assert.Equal(t, "transfer", f.dispatch.Calls[0].Selector)
	assert.Equal(t, "ping", f.dispatch.Calls[1].Selector)

	require.Len(t, f.emitter.Events, 1)
	ev := f.emitter.Events[0].(custody.RequestExecuted)
	assert.Equal(t, req.Hash, ev.Hash)
	assert.Len(t, ev.Results, 2)
}

func TestExecuteGovernanceSelfCall(t *testing.T) {
	f := newFixture(t)
	call, err := NewSelfCall(selfAddr, &SetThresholdMsg{Threshold: 3})
	require.NoError(t, err)

	_, err = f.acc.Execute(context.Background(), f.db, f.request(t, call))
	require.NoError(t, err)

	threshold, err := f.acc.Threshold(f.db)
	require.NoError(t, err)
	assert.Equal(t, 3, threshold)
}

func TestExecuteAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.dispatch.Handler = func(ctx custody.Context, db custody.KVStore, call custody.Call) (*custody.CallResult, error) {
		switch call.Selector {
		case "write":
			if err := db.Set([]byte("side-effect"), []byte{1}); err != nil {
				return nil, err
			}
			return &custody.CallResult{}, nil
		default:
			return nil, errBoom
		}
	}

	req := f.request(t, externalCall("write"), externalCall("boom"))
	_, err := f.acc.Execute(context.Background(), f.db, req)
	require.Error(t, err)

	// The write of the first call must not survive the batch failure.
	ok, err := f.db.Has([]byte("side-effect"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.emitter.Events)
}

func TestExecuteRejectsReentrantCall(t *testing.T) {
	f := newFixture(t)
	var nestedErr error
	f.dispatch.Handler = func(ctx custody.Context, db custody.KVStore, call custody.Call) (*custody.CallResult, error) {
		// The dispatched call finds its way back into the account.
		nested := f.request(t, externalCall("transfer"))
		_, nestedErr = f.acc.Execute(ctx, db.(custody.CacheableKVStore), nested)
		return nil, nestedErr
	}

	_, err := f.acc.Execute(context.Background(), f.db, f.request(t, externalCall("evil")))
	require.Error(t, err)
	assert.True(t, ErrReentrantCall.Is(nestedErr))
}

func TestExecuteReleasesGuardOnFailure(t *testing.T) {
	f := newFixture(t)
	f.dispatch.Err = errBoom

	_, err := f.acc.Execute(context.Background(), f.db, f.request(t, externalCall("boom")))
	require.Error(t, err)

	// A later request is not blocked by a stale guard.
	f.dispatch.Err = nil
	_, err = f.acc.Execute(context.Background(), f.db, f.request(t, externalCall("transfer")))
	require.NoError(t, err)
}

func TestExecuteRollsBackFailedUpgrade(t *testing.T) {
	f := newFixture(t)
	v1 := accountCode("code-v1", custody.Version{Major: 1})
	v2 := accountCode("code-v2", custody.Version{Major: 2})
	f.codes[string(v1.CodeID)] = v1
	f.codes[string(v2.CodeID)] = v2
	require.NoError(t, setActiveCode(f.db, v1.CodeID))

	v2.MigrateFn = func(ctx custody.Context, db custody.KVStore, previous custody.Version, data []byte) error {
		return errBoom
	}

	call, err := NewSelfCall(selfAddr, &UpgradeMsg{Code: v2.CodeID})
	require.NoError(t, err)
	_, err = f.acc.Execute(context.Background(), f.db, f.request(t, call))
	require.Error(t, err)

	// The failed migration rolled back the code switch as well.
	active, err := ActiveCode(f.db)
	require.NoError(t, err)
	assert.True(t, v1.CodeID.Equals(active))
}

func TestExecuteRejectsUnsupportedVersion(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, externalCall("transfer"))
	req.Version = 99
	_, err := f.acc.Execute(context.Background(), f.db, req)
	assert.True(t, ErrUnsupportedVersion.Is(err))
}

func TestValidateDeploy(t *testing.T) {
	f := newFixture(t)
	hash := []byte("deploy-hash")
	inline := []custody.SignerID{f.keys[0].SignerID(), f.keys[1].SignerID()}
	code := custody.CodeID("code-v1")
	salt := []byte("salt")

	err := f.acc.ValidateDeploy(code, salt, 2, inline, hash, custodytest.Approve(t, hash, f.keys[0]))
	require.NoError(t, err)

	// Threshold above the inline signer count.
	err = f.acc.ValidateDeploy(code, salt, 3, inline, hash, custodytest.Approve(t, hash, f.keys[0]))
	assert.True(t, ErrInvalidThreshold.Is(err))

	// The single signature must come from an inline member.
	err = f.acc.ValidateDeploy(code, salt, 2, inline, hash, custodytest.Approve(t, hash, f.keys[2]))
	assert.True(t, ErrNotASigner.Is(err))
}

func TestExecuteOnCommittedStore(t *testing.T) {
	// The same governance flow against a merkle-committed backend: state
	// written by an executed request survives a commit and reload.
	commit := iavl.MemCommitStore()
	db := commit.CacheWrap()

	keys := []crypto.PrivateKey{seedKey(t, 1), seedKey(t, 2)}
	ids := []custody.SignerID{keys[0].SignerID(), keys[1].SignerID()}
	require.NoError(t, NewSignerRegistry().Add(db, ids, nil))
	require.NoError(t, setThreshold(db, 1))

	acc := NewAccount(selfAddr, crypto.Ed25519Verifier{}, &custodytest.Dispatcher{}, custodytest.NewCodeStore(), nil)

	call, err := NewSelfCall(selfAddr, &SetThresholdMsg{Threshold: 2})
	require.NoError(t, err)
	hash := []byte("request-hash")
	req := custody.Request{
		Version:    1,
		Hash:       hash,
		Signatures: custodytest.Approve(t, hash, keys[0]),
		Calls:      []custody.Call{call},
	}
	require.NoError(t, acc.Validate(context.Background(), db, req))
	_, err = acc.Execute(context.Background(), db, req)
	require.NoError(t, err)
	require.NoError(t, db.Write())

	require.NoError(t, commit.LoadLatestVersion())
	threshold, err := Threshold(commit)
	require.NoError(t, err)
	assert.Equal(t, 2, threshold)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)

	ok, err := f.acc.IsSigner(f.db, f.keys[0].SignerID())
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := f.acc.Signers(f.db)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	// No active code means the zero version.
	version, err := f.acc.Version(f.db)
	require.NoError(t, err)
	assert.Equal(t, custody.Version{}, version)

	v1 := accountCode("code-v1", custody.Version{Major: 1, Minor: 2, Patch: 3})
	f.codes[string(v1.CodeID)] = v1
	require.NoError(t, setActiveCode(f.db, v1.CodeID))
	version, err = f.acc.Version(f.db)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", version.String())

	assert.True(t, SupportsInterface(InterfaceIntrospection))
	assert.True(t, SupportsInterface(InterfaceAccount))
	assert.True(t, SupportsInterface(InterfaceAccountLegacy))
	assert.False(t, SupportsInterface(0xffffffff))
}
