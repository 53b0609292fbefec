package custody

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/custody/errors"
)

const (
	// SignerIDLength is the length of all signer identifiers. A signer is
	// identified by its raw 32 byte public key material.
	SignerIDLength = 32

	// AddressLength is the length of all addresses. An address is a
	// collision-free, one-way digest of data (usually a public key or a
	// deployment commitment) identifying an account or call target.
	AddressLength = 20
)

// SignerID identifies an approver authorized to co-sign requests. It is
// the signer's raw public key material. The all-zero value is reserved as
// the "absent" sentinel and is never a valid signer.
type SignerID []byte

// Validate returns an error if the identifier is not the valid size or is
// the reserved zero sentinel.
func (s SignerID) Validate() error {
	if len(s) != SignerIDLength {
		return errors.Wrapf(errors.ErrInput, "signer id must be %d bytes, got %d", SignerIDLength, len(s))
	}
	if s.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "zero signer id is reserved")
	}
	return nil
}

// IsZero returns true if every byte of the identifier is zero. Note that
// a nil identifier is zero as well.
func (s SignerID) IsZero() bool {
	for _, c := range s {
		if c != 0 {
			return false
		}
	}
	return true
}

// Equals checks if two signer identifiers are the same.
func (s SignerID) Equals(o SignerID) bool {
	return bytes.Equal(s, o)
}

// Compare orders signer identifiers as big-endian unsigned integers,
// which is plain byte order for fixed-size identifiers. Aggregate
// signatures must list signers in strictly ascending Compare order.
func (s SignerID) Compare(o SignerID) int {
	return bytes.Compare(s, o)
}

// String returns a human readable hex representation.
func (s SignerID) String() string {
	if len(s) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(s))
}

// MarshalJSON provides a hex representation for JSON, to override the
// standard base64 []byte encoding.
func (s SignerID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(s)))
}

// UnmarshalJSON parses JSON in hex representation.
func (s *SignerID) UnmarshalJSON(src []byte) error {
	raw, err := hexJSONBytes(src)
	if err != nil {
		return err
	}
	*s = SignerID(raw)
	return nil
}

// Address identifies an account or a call target.
//
// It will be of size AddressLength.
type Address []byte

// Equals checks if two addresses are the same.
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// String returns a human readable string. Currently hex, clients that
// want a checksummed form can use crypto/bech32.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Validate returns an error if the address is not the valid size.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address must be %d bytes, got %d", AddressLength, len(a))
	}
	return nil
}

// MarshalJSON provides a hex representation for JSON.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

// UnmarshalJSON parses JSON in hex representation.
func (a *Address) UnmarshalJSON(src []byte) error {
	raw, err := hexJSONBytes(src)
	if err != nil {
		return err
	}
	*a = Address(raw)
	return nil
}

// hexJSONBytes reads a JSON string and decodes it as hex.
func hexJSONBytes(src []byte) ([]byte, error) {
	var s string
	if err := json.Unmarshal(src, &s); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// NewAddress hashes and truncates into the proper size.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	h := sha256.Sum256(data)
	return h[:AddressLength]
}
