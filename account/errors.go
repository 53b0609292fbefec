package account

import (
	"github.com/iov-one/custody/errors"
)

// Error codes 1200-1219 are reserved for this extension.
var (
	// ErrDuplicateSigner is returned when adding a signer that is already
	// a registry member.
	ErrDuplicateSigner = errors.Register(1200, "duplicate signer")

	// ErrUnknownSigner is returned when removing or replacing a signer
	// that is not a registry member.
	ErrUnknownSigner = errors.Register(1201, "unknown signer")

	// ErrCapacityExceeded is returned when a mutation would grow the
	// registry beyond its maximum size.
	ErrCapacityExceeded = errors.Register(1202, "signer capacity exceeded")

	// ErrLastSigner is returned when a removal would leave the registry
	// empty.
	ErrLastSigner = errors.Register(1203, "cannot remove the last signer")

	// ErrInvalidThreshold is returned when a threshold is outside of
	// [1, signer count].
	ErrInvalidThreshold = errors.Register(1204, "invalid threshold")

	// ErrInvalidSignerCount is returned when a mutation would leave the
	// registry outside of [1, capacity].
	ErrInvalidSignerCount = errors.Register(1205, "invalid signer count")

	// ErrOnlySelf is returned when a governance or upgrade entry point is
	// called by anyone but the account itself.
	ErrOnlySelf = errors.Register(1206, "only the account itself may call this")

	// ErrSignatureLength is returned when an aggregate signature does not
	// contain exactly threshold entries.
	ErrSignatureLength = errors.Register(1207, "invalid aggregate signature length")

	// ErrSignersNotSorted is returned when an aggregate signature is not
	// in strictly ascending signer order. A repeated signer fails the
	// same way.
	ErrSignersNotSorted = errors.Register(1208, "signers not sorted")

	// ErrNotASigner is returned when an aggregate signature names a
	// signer that is not a registry member.
	ErrNotASigner = errors.Register(1209, "not a signer")

	// ErrInvalidSignature is returned by the strict verifier when a
	// signature does not match.
	ErrInvalidSignature = errors.Register(1210, "invalid signature")

	// ErrUnsupportedVersion is returned for stale or future envelope
	// versions.
	ErrUnsupportedVersion = errors.Register(1211, "unsupported envelope version")

	// ErrForbiddenCall is returned when a user submitted call names a
	// reserved selector.
	ErrForbiddenCall = errors.Register(1212, "forbidden call")

	// ErrForbiddenSelfCall is returned when a multi-call batch targets
	// the account itself.
	ErrForbiddenSelfCall = errors.Register(1213, "forbidden self call in batch")

	// ErrReentrantCall is returned when the execution path is entered
	// again before the in-flight execution completed.
	ErrReentrantCall = errors.Register(1214, "reentrant call")

	// ErrInvalidImplementation is returned when an upgrade target does
	// not expose the account capability interface.
	ErrInvalidImplementation = errors.Register(1215, "invalid implementation")

	// ErrUnexpectedData is returned when the post-upgrade entry point
	// receives a non-empty payload.
	ErrUnexpectedData = errors.Register(1216, "unexpected upgrade data")
)
