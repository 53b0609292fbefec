package custody

import (
	"github.com/iov-one/custody/errors"
)

// RequestVersionFlagEstimate marks a fee estimation variant of an
// envelope version. An estimation request is validated and executed the
// same way, the host only withholds the state commit.
const RequestVersionFlagEstimate uint64 = 1 << 63

// IsSupportedVersion returns true if the given envelope version, or its
// fee estimation variant, can be processed by this code.
func IsSupportedVersion(version uint64) bool {
	switch version &^ RequestVersionFlagEstimate {
	case 1, 2, 3:
		return true
	}
	return false
}

// SignerSignature is a single approver's signature over a request hash.
// An ordered sequence of these forms the aggregate signature of a
// request.
type SignerSignature struct {
	Signer SignerID
	R      []byte
	S      []byte
}

// Validate returns an error if the pair cannot possibly be verified.
func (s SignerSignature) Validate() error {
	if err := s.Signer.Validate(); err != nil {
		return errors.Wrap(err, "signer")
	}
	if len(s.R) == 0 {
		return errors.Wrap(errors.ErrEmpty, "signature r")
	}
	if len(s.S) == 0 {
		return errors.Wrap(errors.ErrEmpty, "signature s")
	}
	return nil
}

// Call is a single operation requested from the account: run Selector on
// Target with the opaque Args payload. Calls targeting the account itself
// are routed to the registered handlers, anything else goes through the
// host's dispatch primitive.
type Call struct {
	Target   Address
	Selector string
	Args     []byte
}

// Validate returns an error if the call is malformed.
func (c Call) Validate() error {
	if err := c.Target.Validate(); err != nil {
		return errors.Wrap(err, "target")
	}
	if c.Selector == "" {
		return errors.Wrap(errors.ErrEmpty, "selector")
	}
	return nil
}

// Request is the envelope the account receives from the host ledger. It
// carries only the fields the core reads; any further host serialization
// is out of scope.
type Request struct {
	// Version of the host protocol envelope.
	Version uint64
	// Hash of the host transaction. It is the message the aggregate
	// signature was produced over, and the key of the execution record.
	Hash []byte
	// Signatures is the aggregate signature: one entry per approver, in
	// strictly ascending signer order.
	Signatures []SignerSignature
	// Calls are dispatched in sequence order, all-or-nothing.
	Calls []Call
}

// Validate ensures the envelope is complete enough to be processed. It
// deliberately does not inspect versions, signatures or call targets,
// those are the pipeline's gates with their own failure classes.
func (r *Request) Validate() error {
	if len(r.Hash) == 0 {
		return errors.Wrap(errors.ErrEmpty, "transaction hash")
	}
	for i, sig := range r.Signatures {
		if err := sig.Validate(); err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
	}
	for i, call := range r.Calls {
		if err := call.Validate(); err != nil {
			return errors.Wrapf(err, "call %d", i)
		}
	}
	return nil
}
