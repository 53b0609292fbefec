package account

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// This is the aggregation verification protocol. An aggregate signature
// is an ordered list of (signer, r, s) entries. It is valid iff it has
// exactly threshold entries, the signers are in strictly ascending order,
// every signer is a registry member and every signature verifies against
// the message hash. The strict ordering makes the encoding canonical
// (exactly one valid ordering per signer subset) and rejects duplicates
// without an auxiliary set.

// AssertAggregate fails loudly unless the aggregate signature satisfies
// the current threshold policy.
func AssertAggregate(db custody.ReadOnlyKVStore, verify custody.SignatureVerifier, hash []byte, sigs []custody.SignerSignature) error {
	threshold, err := Threshold(db)
	if err != nil {
		return err
	}
	// A store that was never seeded reports a zero threshold. Refusing it
	// here keeps an empty aggregate from ever satisfying the length gate.
	if threshold < 1 {
		return errors.Wrap(errors.ErrState, "account not initialized")
	}
	return assertAggregate(db, NewSignerRegistry(), verify, threshold, hash, sigs)
}

// VerifyAggregate is the non-strict variant: a structural defect of the
// aggregate (wrong length, misordered or unknown signers) is still an
// error, but a plain signature mismatch reports false.
func VerifyAggregate(db custody.ReadOnlyKVStore, verify custody.SignatureVerifier, hash []byte, sigs []custody.SignerSignature) (bool, error) {
	switch err := AssertAggregate(db, verify, hash, sigs); {
	case err == nil:
		return true, nil
	case ErrInvalidSignature.Is(err):
		return false, nil
	default:
		return false, err
	}
}

func assertAggregate(db custody.ReadOnlyKVStore, reg SignerRegistry, verify custody.SignatureVerifier, threshold int, hash []byte, sigs []custody.SignerSignature) error {
	if len(sigs) != threshold {
		return errors.Wrapf(ErrSignatureLength, "%d signatures, threshold %d", len(sigs), threshold)
	}

	last := zeroSigner
	for i, sig := range sigs {
		// Rejects duplicates and enforces strict ascending order in one
		// comparison. Starting from the zero sentinel also rules out the
		// reserved zero signer.
		if sig.Signer.Compare(last) <= 0 {
			return errors.Wrapf(ErrSignersNotSorted, "signature %d", i)
		}
		last = sig.Signer

		if member, err := reg.IsSigner(db, sig.Signer); err != nil {
			return err
		} else if !member {
			return errors.Wrapf(ErrNotASigner, "%s", sig.Signer)
		}

		// Short-circuit on the first mismatch, remaining entries are
		// not inspected.
		if !verify.Verify(hash, sig.Signer, sig.R, sig.S) {
			return errors.Wrapf(ErrInvalidSignature, "signature %d by %s", i, sig.Signer)
		}
	}
	return nil
}

// AssertSingleSignerSignature is the deployment-time bootstrap variant.
// It accepts exactly one signature by any member of the supplied, not yet
// persisted signer set. This deliberately trades the full threshold for
// the ability of a fresh account to pay for its own deployment, an
// accepted risk window until the full signer set is live.
func AssertSingleSignerSignature(verify custody.SignatureVerifier, signers []custody.SignerID, hash []byte, sigs []custody.SignerSignature) error {
	if len(sigs) != 1 {
		return errors.Wrapf(ErrSignatureLength, "%d signatures, bootstrap accepts exactly one", len(sigs))
	}
	sig := sigs[0]

	var member bool
	for _, s := range signers {
		if s.Equals(sig.Signer) {
			member = true
			break
		}
	}
	if !member {
		return errors.Wrapf(ErrNotASigner, "%s", sig.Signer)
	}

	if !verify.Verify(hash, sig.Signer, sig.R, sig.S) {
		return errors.Wrapf(ErrInvalidSignature, "signature by %s", sig.Signer)
	}
	return nil
}
