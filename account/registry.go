package account

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// SignerRegistry maintains the ordered set of approvers in the account's
// KVStore. Members are linked in insertion order: the zero sentinel links
// to the first signer, every member links to its successor and the tail
// links back to the zero sentinel. A separately cached tail avoids
// rescanning the chain on append. The cache and any caller supplied hint
// are performance hints only, a stale value degrades the operation to a
// linear scan of the chain.
type SignerRegistry struct{}

// NewSignerRegistry returns a registry operating on the default state
// keys.
func NewSignerRegistry() SignerRegistry {
	return SignerRegistry{}
}

// IsSigner returns true if the given identifier is a registry member. The
// zero sentinel is never a member.
func (SignerRegistry) IsSigner(db custody.ReadOnlyKVStore, id custody.SignerID) (bool, error) {
	if id.Validate() != nil {
		return false, nil
	}
	has, err := db.Has(linkKey(id))
	if err != nil {
		return false, errors.Wrap(err, "membership lookup")
	}
	return has, nil
}

// Count returns the number of registry members.
func (SignerRegistry) Count(db custody.ReadOnlyKVStore) (int, error) {
	return loadInt(db, keyCount)
}

// List returns all members in insertion order.
func (r SignerRegistry) List(db custody.ReadOnlyKVStore) ([]custody.SignerID, error) {
	count, err := r.Count(db)
	if err != nil {
		return nil, err
	}
	signers := make([]custody.SignerID, 0, count)

	cur := zeroSigner
	for {
		next, present, err := nextSigner(db, cur)
		if err != nil {
			return nil, err
		}
		if !present || next.IsZero() {
			break
		}
		signers = append(signers, next)
		if len(signers) > count {
			return nil, errors.Wrap(errors.ErrModel, "signer chain longer than count")
		}
		cur = next
	}
	if len(signers) != count {
		return nil, errors.Wrapf(errors.ErrModel, "signer chain of %d, count says %d", len(signers), count)
	}
	return signers, nil
}

// Add appends the given signers at the end of the chain. It fails with
// ErrDuplicateSigner if any of them is already a member and with
// ErrCapacityExceeded if the result would exceed MaxSigners. afterHint
// may name the last known tail to skip the chain scan, nil is always
// safe.
func (r SignerRegistry) Add(db custody.KVStore, ids []custody.SignerID, afterHint custody.SignerID) error {
	count, err := r.Count(db)
	if err != nil {
		return err
	}
	if count+len(ids) > MaxSigners {
		return errors.Wrapf(ErrCapacityExceeded, "%d members plus %d new", count, len(ids))
	}

	for i, id := range ids {
		if err := id.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
		if member, err := r.IsSigner(db, id); err != nil {
			return err
		} else if member {
			return errors.Wrapf(ErrDuplicateSigner, "%s", id)
		}
		for _, prev := range ids[:i] {
			if id.Equals(prev) {
				return errors.Wrapf(ErrDuplicateSigner, "%s listed twice", id)
			}
		}
	}

	tail, err := r.findTail(db, afterHint)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := db.Set(linkKey(tail), id); err != nil {
			return errors.Wrap(err, "link signer")
		}
		if err := db.Set(linkKey(id), zeroSigner); err != nil {
			return errors.Wrap(err, "terminate chain")
		}
		tail = id
	}
	if err := db.Set(keyTail, tail); err != nil {
		return errors.Wrap(err, "cache tail")
	}
	return saveInt(db, keyCount, count+len(ids))
}

// Remove unlinks the given signers. It fails with ErrUnknownSigner if any
// of them is not a member and with ErrLastSigner if the registry would be
// left empty.
func (r SignerRegistry) Remove(db custody.KVStore, ids []custody.SignerID, afterHint custody.SignerID) error {
	count, err := r.Count(db)
	if err != nil {
		return err
	}
	if count-len(ids) < 1 {
		return errors.Wrapf(ErrLastSigner, "removing %d of %d members", len(ids), count)
	}

	for _, id := range ids {
		// Sequential processing makes a doubled entry fail the
		// membership test on its second occurrence.
		if member, err := r.IsSigner(db, id); err != nil {
			return err
		} else if !member {
			return errors.Wrapf(ErrUnknownSigner, "%s", id)
		}
		if err := r.unlink(db, id, afterHint); err != nil {
			return err
		}
	}
	return saveInt(db, keyCount, count-len(ids))
}

// Replace atomically substitutes one member with a new signer, keeping
// the chain position and the registry size. It fails with
// ErrUnknownSigner if old is not a member and with ErrDuplicateSigner if
// new already is.
func (r SignerRegistry) Replace(db custody.KVStore, old, new custody.SignerID, afterHint custody.SignerID) error {
	if err := new.Validate(); err != nil {
		return errors.Wrap(err, "new signer")
	}
	if member, err := r.IsSigner(db, old); err != nil {
		return err
	} else if !member {
		return errors.Wrapf(ErrUnknownSigner, "%s", old)
	}
	if member, err := r.IsSigner(db, new); err != nil {
		return err
	} else if member {
		return errors.Wrapf(ErrDuplicateSigner, "%s", new)
	}

	pred, err := r.predecessor(db, old, afterHint)
	if err != nil {
		return err
	}
	next, _, err := nextSigner(db, old)
	if err != nil {
		return err
	}

	if err := db.Set(linkKey(pred), new); err != nil {
		return errors.Wrap(err, "relink predecessor")
	}
	if err := db.Set(linkKey(new), next); err != nil {
		return errors.Wrap(err, "link replacement")
	}
	if err := db.Delete(linkKey(old)); err != nil {
		return errors.Wrap(err, "unlink old signer")
	}
	if next.IsZero() {
		if err := db.Set(keyTail, new); err != nil {
			return errors.Wrap(err, "cache tail")
		}
	}
	return nil
}

// unlink removes one member from the chain, fixing up the predecessor
// link and the tail cache.
func (r SignerRegistry) unlink(db custody.KVStore, id custody.SignerID, afterHint custody.SignerID) error {
	pred, err := r.predecessor(db, id, afterHint)
	if err != nil {
		return err
	}
	next, _, err := nextSigner(db, id)
	if err != nil {
		return err
	}
	if err := db.Set(linkKey(pred), next); err != nil {
		return errors.Wrap(err, "relink predecessor")
	}
	if err := db.Delete(linkKey(id)); err != nil {
		return errors.Wrap(err, "unlink signer")
	}
	if next.IsZero() {
		// removed the tail, the predecessor is the new one
		if err := db.Set(keyTail, pred); err != nil {
			return errors.Wrap(err, "cache tail")
		}
	}
	return nil
}

// findTail returns the last member of the chain, or the zero sentinel for
// an empty registry. It trusts the hint and then the cache only after
// verifying them, otherwise it walks the chain.
func (r SignerRegistry) findTail(db custody.ReadOnlyKVStore, hint custody.SignerID) (custody.SignerID, error) {
	if ok, err := r.isTail(db, hint); err != nil {
		return nil, err
	} else if ok {
		return hint, nil
	}

	cached, err := db.Get(keyTail)
	if err != nil {
		return nil, errors.Wrap(err, "tail cache")
	}
	if ok, err := r.isTail(db, custody.SignerID(cached)); err != nil {
		return nil, err
	} else if ok {
		return custody.SignerID(cached), nil
	}

	// scan fallback
	cur := zeroSigner
	for i := 0; i <= MaxSigners; i++ {
		next, present, err := nextSigner(db, cur)
		if err != nil {
			return nil, err
		}
		if !present || next.IsZero() {
			return cur, nil
		}
		cur = next
	}
	return nil, errors.Wrap(errors.ErrModel, "signer chain cycle")
}

func (r SignerRegistry) isTail(db custody.ReadOnlyKVStore, id custody.SignerID) (bool, error) {
	if member, err := r.IsSigner(db, id); err != nil || !member {
		return false, err
	}
	next, _, err := nextSigner(db, id)
	if err != nil {
		return false, err
	}
	return next.IsZero(), nil
}

// predecessor returns the chain element linking to id. The caller must
// have checked that id is a member.
func (r SignerRegistry) predecessor(db custody.ReadOnlyKVStore, id custody.SignerID, hint custody.SignerID) (custody.SignerID, error) {
	if hint != nil && !hint.IsZero() {
		if next, present, err := nextSigner(db, hint); err != nil {
			return nil, err
		} else if present && next.Equals(id) {
			return hint, nil
		}
	}

	cur := zeroSigner
	for i := 0; i <= MaxSigners; i++ {
		next, present, err := nextSigner(db, cur)
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, errors.Wrapf(ErrUnknownSigner, "%s", id)
		}
		if next.Equals(id) {
			return cur, nil
		}
		if next.IsZero() {
			return nil, errors.Wrapf(ErrUnknownSigner, "%s", id)
		}
		cur = next
	}
	return nil, errors.Wrap(errors.ErrModel, "signer chain cycle")
}

// nextSigner reads the link of the given chain element. present reports
// whether the element exists in the chain at all.
func nextSigner(db custody.ReadOnlyKVStore, id custody.SignerID) (custody.SignerID, bool, error) {
	raw, err := db.Get(linkKey(id))
	if err != nil {
		return nil, false, errors.Wrap(err, "link lookup")
	}
	if raw == nil {
		return nil, false, nil
	}
	if len(raw) != custody.SignerIDLength {
		return nil, false, errors.Wrapf(errors.ErrModel, "corrupted link of %d bytes", len(raw))
	}
	return custody.SignerID(raw), true, nil
}
