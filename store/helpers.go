package store

import "fmt"

/////////////////////////////////////////////////////
// Empty KVStore

// EmptyKVStore never holds any data, used as a base layer under a cache
// wrap when there is no durable backend, eg. in tests.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil.
func (e EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

// Has always returns false.
func (e EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

// Set is a noop.
func (e EmptyKVStore) Set(key, value []byte) error { return nil }

// Delete is a noop.
func (e EmptyKVStore) Delete(key []byte) error { return nil }

// NewBatch returns a batch that can write to this store later.
func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

////////////////////////////////////////////////////
// Non-atomic batch (dummy implementation)

type opKind int32

const (
	setKind opKind = iota + 1
	delKind
)

// Op is either set or delete.
type Op struct {
	kind  opKind
	key   []byte
	value []byte // only for set
}

// Apply performs the stored operation on the given writer.
func (o Op) Apply(out SetDeleter) error {
	switch o.kind {
	case setKind:
		return out.Set(o.key, o.value)
	case delKind:
		return out.Delete(o.key)
	default:
		return fmt.Errorf("unknown op kind: %d", o.kind)
	}
}

// IsSetOp returns true if it is setting (false implies delete).
func (o Op) IsSetOp() bool {
	return o.kind == setKind
}

// Key returns the key the operation affects.
func (o Op) Key() []byte {
	return o.key
}

// SetOp is a helper to create a set operation.
func SetOp(key, value []byte) Op {
	return Op{
		kind:  setKind,
		key:   key,
		value: value,
	}
}

// DelOp is a helper to create a del operation.
func DelOp(key []byte) Op {
	return Op{
		kind: delKind,
		key:  key,
	}
}

// NonAtomicBatch just piles up ops and executes them later on the
// underlying store. Can be used when there is no better option (for
// in-memory stores).
//
// NOTE: Never use this for KVStores that are persistent.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch to be later written to the
// KVStore.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{
		out: out,
	}
}

// Set adds a set operation to the batch.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

// Delete adds a delete operation to the batch.
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Write writes all the ops to the underlying store and resets.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		if err := op.Apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// ShowOps returns all ops collected so far, mainly to debug and test what
// writes a code path produced.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}
