package account

import (
	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// cdc encodes the governance messages carried inside self-call
// arguments. Registration makes the encoding deterministic across nodes.
var cdc = amino.NewCodec()

func init() {
	cdc.RegisterConcrete(&SetThresholdMsg{}, "custody/account/set_threshold", nil)
	cdc.RegisterConcrete(&AddSignersMsg{}, "custody/account/add_signers", nil)
	cdc.RegisterConcrete(&RemoveSignersMsg{}, "custody/account/remove_signers", nil)
	cdc.RegisterConcrete(&ReplaceSignerMsg{}, "custody/account/replace_signer", nil)
	cdc.RegisterConcrete(&UpgradeMsg{}, "custody/account/upgrade", nil)
	cdc.RegisterConcrete(&ExecuteAfterUpgradeMsg{}, "custody/account/execute_after_upgrade", nil)
}

// NewSelfCall packs a governance message into a call targeting the
// account itself. All self administration flows through such calls so the
// authorization rule stays a single caller check.
func NewSelfCall(target custody.Address, msg custody.Msg) (custody.Call, error) {
	if err := msg.Validate(); err != nil {
		return custody.Call{}, errors.Wrap(err, "message")
	}
	raw, err := cdc.MarshalBinaryBare(msg)
	if err != nil {
		return custody.Call{}, errors.Wrap(errors.ErrMsg, err.Error())
	}
	return custody.Call{
		Target:   target,
		Selector: msg.Path(),
		Args:     raw,
	}, nil
}

// decodeMsg turns a self-call back into its concrete message. The
// selector decides the type so a payload cannot masquerade as another
// operation.
func decodeMsg(call custody.Call) (custody.Msg, error) {
	var msg custody.Msg
	switch call.Selector {
	case PathSetThreshold:
		msg = &SetThresholdMsg{}
	case PathAddSigners:
		msg = &AddSignersMsg{}
	case PathRemoveSigners:
		msg = &RemoveSignersMsg{}
	case PathReplaceSigner:
		msg = &ReplaceSignerMsg{}
	case PathUpgrade:
		msg = &UpgradeMsg{}
	case PathExecuteAfterUpgrade:
		msg = &ExecuteAfterUpgradeMsg{}
	default:
		return nil, errors.Wrapf(ErrForbiddenCall, "selector %q", call.Selector)
	}
	if err := cdc.UnmarshalBinaryBare(call.Args, msg); err != nil {
		return nil, errors.Wrap(errors.ErrMsg, err.Error())
	}
	return msg, nil
}
