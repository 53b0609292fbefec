package account

import (
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// RegisterRoutes wires all governance and upgrade handlers of one account
// into the given registry.
func RegisterRoutes(r custody.Registry, address custody.Address, codes custody.CodeStore, emitter custody.Emitter) {
	reg := NewSignerRegistry()
	r.Handle(PathSetThreshold, SetThresholdHandler{address: address, reg: reg, emitter: emitter})
	r.Handle(PathAddSigners, AddSignersHandler{address: address, reg: reg, emitter: emitter})
	r.Handle(PathRemoveSigners, RemoveSignersHandler{address: address, reg: reg, emitter: emitter})
	r.Handle(PathReplaceSigner, ReplaceSignerHandler{address: address, reg: reg, emitter: emitter})
	r.Handle(PathUpgrade, UpgradeHandler{address: address, codes: codes, emitter: emitter})
	r.Handle(PathExecuteAfterUpgrade, ExecuteAfterUpgradeHandler{address: address, codes: codes, emitter: emitter})
}

// assertSelf rejects any message whose caller is not the account itself.
// All administration is gated on this single check: only an approved
// request batch runs with the account as caller.
func assertSelf(ctx custody.Context, address custody.Address) error {
	caller := custody.GetCaller(ctx)
	if !caller.Equals(address) {
		return errors.Wrapf(ErrOnlySelf, "caller %s", caller)
	}
	return nil
}

// SetThresholdHandler changes how many signatures an approval needs.
type SetThresholdHandler struct {
	address custody.Address
	reg     SignerRegistry
	emitter custody.Emitter
}

var _ custody.Handler = SetThresholdHandler{}

func (h SetThresholdHandler) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CallResult, error) {
	m, err := h.validate(ctx, msg)
	if err != nil {
		return nil, err
	}
	count, err := h.reg.Count(db)
	if err != nil {
		return nil, err
	}
	threshold := int(m.Threshold)
	if err := validateConfiguration(threshold, count); err != nil {
		return nil, err
	}
	if err := setThreshold(db, threshold); err != nil {
		return nil, err
	}
	h.emitter.Emit(custody.ConfigurationChanged{
		Threshold:   threshold,
		SignerCount: count,
	})
	return &custody.CallResult{Log: fmt.Sprintf("threshold set to %d", threshold)}, nil
}

func (h SetThresholdHandler) validate(ctx custody.Context, msg custody.Msg) (*SetThresholdMsg, error) {
	m, ok := msg.(*SetThresholdMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := assertSelf(ctx, h.address); err != nil {
		return nil, err
	}
	return m, nil
}

// AddSignersHandler grows the registry and adjusts the threshold.
type AddSignersHandler struct {
	address custody.Address
	reg     SignerRegistry
	emitter custody.Emitter
}

var _ custody.Handler = AddSignersHandler{}

func (h AddSignersHandler) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CallResult, error) {
	m, err := h.validate(ctx, msg)
	if err != nil {
		return nil, err
	}
	if err := h.reg.Add(db, m.Signers, m.AfterHint); err != nil {
		return nil, err
	}
	count, err := h.reg.Count(db)
	if err != nil {
		return nil, err
	}
	threshold := int(m.Threshold)
	if err := validateConfiguration(threshold, count); err != nil {
		return nil, err
	}
	if err := setThreshold(db, threshold); err != nil {
		return nil, err
	}
	h.emitter.Emit(custody.ConfigurationChanged{
		Threshold:   threshold,
		SignerCount: count,
		Added:       m.Signers,
	})
	return &custody.CallResult{Log: fmt.Sprintf("added %d signers", len(m.Signers))}, nil
}

func (h AddSignersHandler) validate(ctx custody.Context, msg custody.Msg) (*AddSignersMsg, error) {
	m, ok := msg.(*AddSignersMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := assertSelf(ctx, h.address); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveSignersHandler shrinks the registry and adjusts the threshold.
type RemoveSignersHandler struct {
	address custody.Address
	reg     SignerRegistry
	emitter custody.Emitter
}

var _ custody.Handler = RemoveSignersHandler{}

func (h RemoveSignersHandler) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CallResult, error) {
	m, err := h.validate(ctx, msg)
	if err != nil {
		return nil, err
	}
	if err := h.reg.Remove(db, m.Signers, m.AfterHint); err != nil {
		return nil, err
	}
	count, err := h.reg.Count(db)
	if err != nil {
		return nil, err
	}
	threshold := int(m.Threshold)
	if err := validateConfiguration(threshold, count); err != nil {
		return nil, err
	}
	if err := setThreshold(db, threshold); err != nil {
		return nil, err
	}
	h.emitter.Emit(custody.ConfigurationChanged{
		Threshold:   threshold,
		SignerCount: count,
		Removed:     m.Signers,
	})
	return &custody.CallResult{Log: fmt.Sprintf("removed %d signers", len(m.Signers))}, nil
}

func (h RemoveSignersHandler) validate(ctx custody.Context, msg custody.Msg) (*RemoveSignersMsg, error) {
	m, ok := msg.(*RemoveSignersMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := assertSelf(ctx, h.address); err != nil {
		return nil, err
	}
	return m, nil
}

// ReplaceSignerHandler swaps one approver for another. Registry size and
// threshold are unchanged.
type ReplaceSignerHandler struct {
	address custody.Address
	reg     SignerRegistry
	emitter custody.Emitter
}

var _ custody.Handler = ReplaceSignerHandler{}

func (h ReplaceSignerHandler) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CallResult, error) {
	m, err := h.validate(ctx, msg)
	if err != nil {
		return nil, err
	}
	if err := h.reg.Replace(db, m.Old, m.New, m.AfterHint); err != nil {
		return nil, err
	}
	threshold, err := Threshold(db)
	if err != nil {
		return nil, err
	}
	count, err := h.reg.Count(db)
	if err != nil {
		return nil, err
	}
	h.emitter.Emit(custody.ConfigurationChanged{
		Threshold:   threshold,
		SignerCount: count,
		Added:       []custody.SignerID{m.New},
		Removed:     []custody.SignerID{m.Old},
	})
	return &custody.CallResult{Log: fmt.Sprintf("replaced signer %s", m.Old)}, nil
}

func (h ReplaceSignerHandler) validate(ctx custody.Context, msg custody.Msg) (*ReplaceSignerMsg, error) {
	m, ok := msg.(*ReplaceSignerMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := assertSelf(ctx, h.address); err != nil {
		return nil, err
	}
	return m, nil
}
