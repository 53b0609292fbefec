package account

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Routing paths of the self-call selectors.
const (
	PathSetThreshold        = "account/set_threshold"
	PathAddSigners          = "account/add_signers"
	PathRemoveSigners       = "account/remove_signers"
	PathReplaceSigner       = "account/replace_signer"
	PathUpgrade             = "account/upgrade"
	PathExecuteAfterUpgrade = "account/execute_after_upgrade"
)

var (
	_ custody.Msg = (*SetThresholdMsg)(nil)
	_ custody.Msg = (*AddSignersMsg)(nil)
	_ custody.Msg = (*RemoveSignersMsg)(nil)
	_ custody.Msg = (*ReplaceSignerMsg)(nil)
	_ custody.Msg = (*UpgradeMsg)(nil)
	_ custody.Msg = (*ExecuteAfterUpgradeMsg)(nil)
)

// SetThresholdMsg changes the approval threshold without touching the
// registry.
type SetThresholdMsg struct {
	Threshold int64
}

// Path fulfills custody.Msg to allow routing.
func (*SetThresholdMsg) Path() string {
	return PathSetThreshold
}

// Validate enforces threshold boundaries.
func (m *SetThresholdMsg) Validate() error {
	if m.Threshold < 1 || m.Threshold > MaxSigners {
		return errors.Wrapf(ErrInvalidThreshold, "%d", m.Threshold)
	}
	return nil
}

// AddSignersMsg appends approvers to the registry and sets the threshold
// the grown registry must satisfy.
type AddSignersMsg struct {
	Threshold int64
	Signers   []custody.SignerID
	// AfterHint optionally names the last known tail signer so the
	// append point is found without a chain scan.
	AfterHint custody.SignerID
}

// Path fulfills custody.Msg to allow routing.
func (*AddSignersMsg) Path() string {
	return PathAddSigners
}

// Validate enforces signer and threshold boundaries.
func (m *AddSignersMsg) Validate() error {
	if err := validateSigners(m.Signers); err != nil {
		return err
	}
	if m.Threshold < 1 || m.Threshold > MaxSigners {
		return errors.Wrapf(ErrInvalidThreshold, "%d", m.Threshold)
	}
	return nil
}

// RemoveSignersMsg removes approvers from the registry and sets the
// threshold the shrunk registry must satisfy.
type RemoveSignersMsg struct {
	Threshold int64
	Signers   []custody.SignerID
	AfterHint custody.SignerID
}

// Path fulfills custody.Msg to allow routing.
func (*RemoveSignersMsg) Path() string {
	return PathRemoveSigners
}

// Validate enforces signer and threshold boundaries.
func (m *RemoveSignersMsg) Validate() error {
	if err := validateSigners(m.Signers); err != nil {
		return err
	}
	if m.Threshold < 1 || m.Threshold > MaxSigners {
		return errors.Wrapf(ErrInvalidThreshold, "%d", m.Threshold)
	}
	return nil
}

// ReplaceSignerMsg atomically substitutes one approver with another,
// keeping registry size and threshold.
type ReplaceSignerMsg struct {
	Old       custody.SignerID
	New       custody.SignerID
	AfterHint custody.SignerID
}

// Path fulfills custody.Msg to allow routing.
func (*ReplaceSignerMsg) Path() string {
	return PathReplaceSigner
}

// Validate ensures both identifiers are well formed.
func (m *ReplaceSignerMsg) Validate() error {
	if err := m.Old.Validate(); err != nil {
		return errors.Wrap(err, "old signer")
	}
	if err := m.New.Validate(); err != nil {
		return errors.Wrap(err, "new signer")
	}
	return nil
}

// UpgradeMsg switches the account to new executable logic and invokes its
// migration callback with Data in the same transaction.
type UpgradeMsg struct {
	Code custody.CodeID
	Data []byte
}

// Path fulfills custody.Msg to allow routing.
func (*UpgradeMsg) Path() string {
	return PathUpgrade
}

// Validate ensures the target code is named.
func (m *UpgradeMsg) Validate() error {
	return errors.Wrap(m.Code.Validate(), "code")
}

// ExecuteAfterUpgradeMsg finishes a staged two-step upgrade. Its selector
// is reserved: it may only run as a direct consequence of an upgrade,
// never as a user submitted call.
type ExecuteAfterUpgradeMsg struct {
	Previous custody.Version
	Data     []byte
}

// Path fulfills custody.Msg to allow routing.
func (*ExecuteAfterUpgradeMsg) Path() string {
	return PathExecuteAfterUpgrade
}

// Validate accepts any payload, the handler rejects non-empty data with
// its own failure class.
func (m *ExecuteAfterUpgradeMsg) Validate() error {
	return nil
}

func validateSigners(ids []custody.SignerID) error {
	if len(ids) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no signers")
	}
	if len(ids) > MaxSigners {
		return errors.Wrapf(ErrCapacityExceeded, "%d signers", len(ids))
	}
	for i, id := range ids {
		if err := id.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
	}
	return nil
}
