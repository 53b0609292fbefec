package custody

import (
	"fmt"

	"github.com/tendermint/tendermint/libs/common"
)

// Event is an immutable fact about a state change of the account. Events
// are broadcast fire-and-forget, they are never stored and never
// acknowledged.
type Event interface {
	// EventType names the kind of record for routing and indexing.
	EventType() string

	// Tags returns the record content in an indexable form.
	Tags() []common.KVPair
}

// Emitter is the broadcast primitive the account publishes its records
// through. Delivery is an external concern.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc turns a plain function into an Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(ev Event) {
	f(ev)
}

// NopEmitter returns an Emitter that drops every record.
func NopEmitter() Emitter {
	return EmitterFunc(func(Event) {})
}

// ConfigurationChanged is emitted on every registry or threshold
// mutation. Added and Removed list exactly the signers affected by the
// emitting operation, Threshold and SignerCount describe the resulting
// configuration.
type ConfigurationChanged struct {
	Threshold   int
	SignerCount int
	Added       []SignerID
	Removed     []SignerID
}

var _ Event = ConfigurationChanged{}

func (ConfigurationChanged) EventType() string {
	return "configuration_changed"
}

func (ev ConfigurationChanged) Tags() []common.KVPair {
	tags := []common.KVPair{
		kvPair("threshold", fmt.Sprint(ev.Threshold)),
		kvPair("signer_count", fmt.Sprint(ev.SignerCount)),
	}
	for _, s := range ev.Added {
		tags = append(tags, kvPair("added", s.String()))
	}
	for _, s := range ev.Removed {
		tags = append(tags, kvPair("removed", s.String()))
	}
	return tags
}

// RequestExecuted is emitted after a call batch completed, keyed by the
// request hash, with the full ordered result set for auditability.
type RequestExecuted struct {
	Hash    []byte
	Results []CallResult
}

var _ Event = RequestExecuted{}

func (RequestExecuted) EventType() string {
	return "request_executed"
}

func (ev RequestExecuted) Tags() []common.KVPair {
	tags := []common.KVPair{
		kvPair("hash", fmt.Sprintf("%X", ev.Hash)),
	}
	for _, res := range ev.Results {
		tags = append(tags, kvPair("result", fmt.Sprintf("%X", res.Data)))
	}
	return tags
}

// ImplementationUpgraded is emitted when the account adopted new
// executable code.
type ImplementationUpgraded struct {
	Code CodeID
}

var _ Event = ImplementationUpgraded{}

func (ImplementationUpgraded) EventType() string {
	return "implementation_upgraded"
}

func (ev ImplementationUpgraded) Tags() []common.KVPair {
	return []common.KVPair{
		kvPair("code", ev.Code.String()),
	}
}

func kvPair(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}
