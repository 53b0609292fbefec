package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/store"
)

var selfAddr = custody.NewAddress([]byte("the-account"))

func selfCtx() custody.Context {
	return custody.WithCaller(context.Background(), selfAddr)
}

func strangerCtx() custody.Context {
	return custody.WithCaller(context.Background(), custody.NewAddress([]byte("stranger")))
}

// seedRegistry installs signers with the given threshold.
func seedRegistry(t *testing.T, db custody.KVStore, threshold int, ids ...custody.SignerID) {
	t.Helper()
	require.NoError(t, NewSignerRegistry().Add(db, ids, nil))
	require.NoError(t, setThreshold(db, threshold))
}

func TestSetThresholdHandler(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2), sid(3))
	emitter := &custodytest.Emitter{}
	h := SetThresholdHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: emitter}

	_, err := h.Handle(selfCtx(), db, &SetThresholdMsg{Threshold: 3})
	require.NoError(t, err)

	threshold, err := Threshold(db)
	require.NoError(t, err)
	assert.Equal(t, 3, threshold)

	require.Len(t, emitter.Events, 1)
	ev := emitter.Events[0].(custody.ConfigurationChanged)
	assert.Equal(t, 3, ev.Threshold)
	assert.Equal(t, 3, ev.SignerCount)
	assert.Empty(t, ev.Added)
	assert.Empty(t, ev.Removed)
}

func TestSetThresholdHandlerRejectsStranger(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2), sid(3))
	h := SetThresholdHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: custody.NopEmitter()}

	_, err := h.Handle(strangerCtx(), db, &SetThresholdMsg{Threshold: 1})
	assert.True(t, ErrOnlySelf.Is(err))

	threshold, err := Threshold(db)
	require.NoError(t, err)
	assert.Equal(t, 2, threshold)
}

func TestSetThresholdHandlerAboveCount(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2), sid(3))
	h := SetThresholdHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: custody.NopEmitter()}

	_, err := h.Handle(selfCtx(), db, &SetThresholdMsg{Threshold: 4})
	assert.True(t, ErrInvalidThreshold.Is(err))
}

func TestAddSignersHandler(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2), sid(3))
	emitter := &custodytest.Emitter{}
	h := AddSignersHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: emitter}

	_, err := h.Handle(selfCtx(), db, &AddSignersMsg{Threshold: 3, Signers: []custody.SignerID{sid(4)}})
	require.NoError(t, err)

	list, err := NewSignerRegistry().List(db)
	require.NoError(t, err)
	assert.Equal(t, []custody.SignerID{sid(1), sid(2), sid(3), sid(4)}, list)

	threshold, err := Threshold(db)
	require.NoError(t, err)
	assert.Equal(t, 3, threshold)

	require.Len(t, emitter.Events, 1)
	ev := emitter.Events[0].(custody.ConfigurationChanged)
	assert.Equal(t, 3, ev.Threshold)
	assert.Equal(t, 4, ev.SignerCount)
	assert.Equal(t, []custody.SignerID{sid(4)}, ev.Added)
	assert.Empty(t, ev.Removed)
}

func TestAddSignersHandlerDuplicate(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2))
	h := AddSignersHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: custody.NopEmitter()}

	_, err := h.Handle(selfCtx(), db, &AddSignersMsg{Threshold: 2, Signers: []custody.SignerID{sid(2)}})
	assert.True(t, ErrDuplicateSigner.Is(err))
}

func TestRemoveSignersHandler(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2), sid(3))
	emitter := &custodytest.Emitter{}
	h := RemoveSignersHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: emitter}

	_, err := h.Handle(selfCtx(), db, &RemoveSignersMsg{Threshold: 1, Signers: []custody.SignerID{sid(3)}})
	require.NoError(t, err)

	list, err := NewSignerRegistry().List(db)
	require.NoError(t, err)
	assert.Equal(t, []custody.SignerID{sid(1), sid(2)}, list)

	require.Len(t, emitter.Events, 1)
	ev := emitter.Events[0].(custody.ConfigurationChanged)
	assert.Equal(t, 1, ev.Threshold)
	assert.Equal(t, 2, ev.SignerCount)
	assert.Equal(t, []custody.SignerID{sid(3)}, ev.Removed)
}

func TestRemoveSignersHandlerThresholdAboveCount(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2), sid(3))
	h := RemoveSignersHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: custody.NopEmitter()}

	// Dropping to two members cannot keep a threshold of three.
	_, err := h.Handle(selfCtx(), db, &RemoveSignersMsg{Threshold: 3, Signers: []custody.SignerID{sid(3)}})
	assert.True(t, ErrInvalidThreshold.Is(err))
}

func TestReplaceSignerHandler(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 2, sid(1), sid(2), sid(3))
	emitter := &custodytest.Emitter{}
	h := ReplaceSignerHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: emitter}

	_, err := h.Handle(selfCtx(), db, &ReplaceSignerMsg{Old: sid(2), New: sid(5)})
	require.NoError(t, err)

	list, err := NewSignerRegistry().List(db)
	require.NoError(t, err)
	assert.Equal(t, []custody.SignerID{sid(1), sid(5), sid(3)}, list)

	threshold, err := Threshold(db)
	require.NoError(t, err)
	assert.Equal(t, 2, threshold)

	require.Len(t, emitter.Events, 1)
	ev := emitter.Events[0].(custody.ConfigurationChanged)
	assert.Equal(t, []custody.SignerID{sid(5)}, ev.Added)
	assert.Equal(t, []custody.SignerID{sid(2)}, ev.Removed)
}

func TestHandlersRejectForeignMessage(t *testing.T) {
	db := store.MemStore()
	seedRegistry(t, db, 1, sid(1))
	h := SetThresholdHandler{address: selfAddr, reg: NewSignerRegistry(), emitter: custody.NopEmitter()}

	_, err := h.Handle(selfCtx(), db, &AddSignersMsg{Threshold: 1, Signers: []custody.SignerID{sid(2)}})
	assert.Error(t, err)
}
