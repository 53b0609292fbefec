package account

import (
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Capability interfaces answered by SupportsInterface.
const (
	// InterfaceIntrospection is the generic "do you answer introspection"
	// interface.
	InterfaceIntrospection custody.InterfaceID = 0x01ffc9a7
	// InterfaceAccount is the current account capability. Replacement
	// code must declare it to be accepted by an upgrade.
	InterfaceAccount custody.InterfaceID = 0x3e75c2c9
	// InterfaceAccountLegacy is the previous account capability, still
	// answered for compatibility during the upgrade window.
	InterfaceAccountLegacy custody.InterfaceID = 0x2e32a7d1
)

// SupportsInterface reports the capability interfaces of this account.
func SupportsInterface(id custody.InterfaceID) bool {
	switch id {
	case InterfaceIntrospection, InterfaceAccount, InterfaceAccountLegacy:
		return true
	}
	return false
}

// UpgradeHandler switches the account to new executable logic. The code
// switch and the migration callback run in the same savepoint, so a
// failing migration rolls back the switch as well.
type UpgradeHandler struct {
	address custody.Address
	codes   custody.CodeStore
	emitter custody.Emitter
}

var _ custody.Handler = UpgradeHandler{}

func (h UpgradeHandler) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CallResult, error) {
	m, err := h.validate(ctx, msg)
	if err != nil {
		return nil, err
	}
	code, err := h.codes.Lookup(m.Code)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(ErrInvalidImplementation, "unknown code %s", m.Code)
		}
		return nil, err
	}
	if !code.SupportsInterface(InterfaceAccount) {
		return nil, errors.Wrapf(ErrInvalidImplementation, "code %s", m.Code)
	}

	previous, err := activeVersion(db, h.codes)
	if err != nil {
		return nil, err
	}
	if err := setActiveCode(db, m.Code); err != nil {
		return nil, err
	}
	if err := code.Migrate(ctx, db, previous, m.Data); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	h.emitter.Emit(custody.ImplementationUpgraded{Code: m.Code})
	return &custody.CallResult{Log: fmt.Sprintf("upgraded to %s", m.Code)}, nil
}

func (h UpgradeHandler) validate(ctx custody.Context, msg custody.Msg) (*UpgradeMsg, error) {
	m, ok := msg.(*UpgradeMsg)
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

// ExecuteAfterUpgradeHandler finishes a staged upgrade chain. Its message
// can only be decoded from a self-call, so the assertSelf gate makes it
// unreachable for external callers, and user submitted batches reject its
// selector before dispatch.
type ExecuteAfterUpgradeHandler struct {
	address custody.Address
	codes   custody.CodeStore
	emitter custody.Emitter
}

var _ custody.Handler = ExecuteAfterUpgradeHandler{}

func (h ExecuteAfterUpgradeHandler) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CallResult, error) {
	m, err := h.validate(ctx, msg)
	if err != nil {
		return nil, err
	}
	if len(m.Data) != 0 {
		return nil, errors.Wrapf(ErrUnexpectedData, "%d bytes", len(m.Data))
	}
	pending, err := PendingImplementation(db)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &custody.CallResult{Log: "no pending implementation"}, nil
	}
	code, err := h.codes.Lookup(pending)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(ErrInvalidImplementation, "pending code %s", pending)
		}
		return nil, err
	}
	if !code.SupportsInterface(InterfaceAccount) {
		return nil, errors.Wrapf(ErrInvalidImplementation, "pending code %s", pending)
	}
	if err := setActiveCode(db, pending); err != nil {
		return nil, err
	}
	if err := clearPendingImplementation(db); err != nil {
		return nil, err
	}
	if err := code.Migrate(ctx, db, m.Previous, nil); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	h.emitter.Emit(custody.ImplementationUpgraded{Code: pending})
	return &custody.CallResult{Log: fmt.Sprintf("upgraded to pending %s", pending)}, nil
}

func (h ExecuteAfterUpgradeHandler) validate(ctx custody.Context, msg custody.Msg) (*ExecuteAfterUpgradeMsg, error) {
	m, ok := msg.(*ExecuteAfterUpgradeMsg)
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

// activeVersion resolves the version of the currently active code, or a
// zero version when the account never adopted any code.
func activeVersion(db custody.ReadOnlyKVStore, codes custody.CodeStore) (custody.Version, error) {
	active, err := ActiveCode(db)
	if err != nil {
		return custody.Version{}, err
	}
	if len(active) == 0 {
		return custody.Version{}, nil
	}
	code, err := codes.Lookup(active)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			// The active code was removed from the store. Migration still
			// must run, version information is simply lost.
			return custody.Version{}, nil
		}
		return custody.Version{}, err
	}
	return code.Version(), nil
}
