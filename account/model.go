package account

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	// MaxSigners is the maximum number of registry members. The linked
	// registry layout does not require this bound, it exists to keep
	// verification cost predictable.
	MaxSigners = 32

	// DefaultName is the account name used unless the deployment options
	// configure another one.
	DefaultName = "multisig-account"
)

// All durable account state lives under this prefix of the mounted
// KVStore.
var (
	keyThreshold   = []byte("_acc:threshold")
	keyCount       = []byte("_acc:count")
	keyTail        = []byte("_acc:tail")
	keyGuard       = []byte("_acc:guard")
	keyActiveCode  = []byte("_acc:code")
	keyPendingCode = []byte("_acc:pending")
	keyName        = []byte("_acc:name")
	prefixLink     = []byte("_acc:signer:")
)

// zeroSigner is the reserved head sentinel of the signer link chain.
var zeroSigner = make(custody.SignerID, custody.SignerIDLength)

func linkKey(id custody.SignerID) []byte {
	return append(append([]byte{}, prefixLink...), id...)
}

func loadInt(db custody.ReadOnlyKVStore, key []byte) (int, error) {
	raw, err := db.Get(key)
	if err != nil {
		return 0, errors.Wrap(err, "load")
	}
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrModel, "corrupted counter of %d bytes", len(raw))
	}
	return int(binary.BigEndian.Uint64(raw)), nil
}

func saveInt(db custody.KVStore, key []byte, value int) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(value))
	return db.Set(key, raw)
}

// Threshold returns the current approval threshold. Zero means the
// account was not initialized yet.
func Threshold(db custody.ReadOnlyKVStore) (int, error) {
	return loadInt(db, keyThreshold)
}

func setThreshold(db custody.KVStore, threshold int) error {
	return saveInt(db, keyThreshold, threshold)
}

// Name returns the configured account name.
func Name(db custody.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get(keyName)
	if err != nil {
		return "", errors.Wrap(err, "load name")
	}
	if raw == nil {
		return DefaultName, nil
	}
	return string(raw), nil
}

func setName(db custody.KVStore, name string) error {
	return db.Set(keyName, []byte(name))
}

// ActiveCode returns the identifier of the currently running logic, or
// nil if none was configured.
func ActiveCode(db custody.ReadOnlyKVStore) (custody.CodeID, error) {
	raw, err := db.Get(keyActiveCode)
	if err != nil {
		return nil, errors.Wrap(err, "load active code")
	}
	return custody.CodeID(raw), nil
}

func setActiveCode(db custody.KVStore, id custody.CodeID) error {
	return db.Set(keyActiveCode, id)
}

// PendingImplementation returns the code identifier staged by a chained
// upgrade, or nil in steady state.
func PendingImplementation(db custody.ReadOnlyKVStore) (custody.CodeID, error) {
	raw, err := db.Get(keyPendingCode)
	if err != nil {
		return nil, errors.Wrap(err, "load pending implementation")
	}
	return custody.CodeID(raw), nil
}

// SetPendingImplementation stages a code identifier for the second hop of
// an upgrade chain. It is exported for migration hooks of intermediate
// code versions, nothing else should call it.
func SetPendingImplementation(db custody.KVStore, id custody.CodeID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return db.Set(keyPendingCode, id)
}

func clearPendingImplementation(db custody.KVStore) error {
	return db.Delete(keyPendingCode)
}

// validateConfiguration is the combined registry/threshold invariant that
// every mutation must leave intact.
func validateConfiguration(threshold, count int) error {
	if count < 1 || count > MaxSigners {
		return errors.Wrapf(ErrInvalidSignerCount, "%d signers", count)
	}
	if threshold < 1 || threshold > count {
		return errors.Wrapf(ErrInvalidThreshold, "threshold %d of %d signers", threshold, count)
	}
	return nil
}
