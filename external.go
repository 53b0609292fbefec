package custody

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/iov-one/custody/errors"
)

// This file declares the external primitives the account engine consumes.
// All of them are trusted collaborators wired in by the embedding host:
// the engine never implements them, only calls them.

// SignatureVerifier is the low-level signature primitive, treated as a
// trusted oracle. It must be constant-time and side-channel safe, which
// is the implementation's concern, not the caller's.
type SignatureVerifier interface {
	Verify(hash []byte, signer SignerID, r, s []byte) bool
}

// Dispatcher is the host's call primitive for targets other than the
// account itself. A failed dispatch fails the whole request.
type Dispatcher interface {
	Dispatch(ctx Context, db KVStore, call Call) (*CallResult, error)
}

// CodeID is an immutable reference to deployed executable logic that an
// account can adopt as its active behavior.
type CodeID []byte

// Validate returns an error on an unset code identifier.
func (c CodeID) Validate() error {
	if len(c) == 0 {
		return errors.Wrap(errors.ErrEmpty, "code id")
	}
	return nil
}

// Equals checks if two code identifiers are the same.
func (c CodeID) Equals(o CodeID) bool {
	return bytes.Equal(c, o)
}

// String returns a human readable hex representation.
func (c CodeID) String() string {
	if len(c) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(c))
}

// InterfaceID identifies a capability interface for introspection,
// answering the question "does this code behave like an account".
type InterfaceID uint32

// Code is the introspection surface of one deployed logic module.
type Code interface {
	ID() CodeID

	// SupportsInterface reports declared capability interfaces.
	SupportsInterface(InterfaceID) bool

	// Version identifies this logic module. It is passed to Migrate of
	// the code replacing it.
	Version() Version

	// Migrate is invoked on the new code in the same transaction that
	// switched to it. A migration failure rolls back the entire upgrade,
	// including the code switch.
	Migrate(ctx Context, db KVStore, previous Version, data []byte) error
}

// CodeStore resolves code identifiers to deployed logic. Lookup of an
// unknown identifier must return ErrNotFound.
type CodeStore interface {
	Lookup(CodeID) (Code, error)
}
