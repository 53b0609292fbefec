/*
Package iavl provides a commit store backed by a merkelized iavl tree.

The account engine itself only needs a KVStore. An embedding node that
wants durable, hash-committed account state between requests can mount
the engine on top of this adapter and Commit after every request.
*/
package iavl

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

const cacheSize = 10000

// CommitStore manages an iavl committed state.
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with the given backing database.
func NewCommitStore(db dbm.DB) CommitStore {
	tree := iavl.NewMutableTree(db, cacheSize)
	return CommitStore{tree: tree}
}

// MemCommitStore creates a new store with no disk backing, for tests.
func MemCommitStore() CommitStore {
	return NewCommitStore(dbm.NewMemDB())
}

// Get returns the value at last committed state. Returns nil iff key
// doesn't exist.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	version := s.tree.Version()
	_, val := s.tree.GetVersioned(key, version)
	return val, nil
}

// Has checks the key at last committed state.
func (s CommitStore) Has(key []byte) (bool, error) {
	val, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// Commit saves the next version to disk, and returns info.
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version. If there was a
// crash during the last commit, it is guaranteed to return a stable
// state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}

// CacheWrap gives us a savepoint to perform actions on the working tree.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return Cache{
		parent: s,
		tree:   s.tree,
	}
}

// Cache is a working cache on top of the committed tree. Writes go into
// the mutable working set, Write commits them as the next version and
// Discard rolls the working set back to the last committed state.
type Cache struct {
	parent CommitStore
	tree   *iavl.MutableTree
}

var _ store.KVCacheWrap = Cache{}

// Get returns nil iff key doesn't exist.
func (c Cache) Get(key []byte) ([]byte, error) {
	_, val := c.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (c Cache) Has(key []byte) (bool, error) {
	return c.tree.Has(key), nil
}

// Set adds a new value to the working set.
func (c Cache) Set(key, value []byte) error {
	c.tree.Set(key, value)
	return nil
}

// Delete removes from the working set.
func (c Cache) Delete(key []byte) error {
	c.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that can write multiple ops atomically.
func (c Cache) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(c)
}

// CacheWrap wraps us once again, with btree.
func (c Cache) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(c, c.NewBatch(), nil)
}

// Write commits the working set as the next version.
func (c Cache) Write() error {
	_, err := c.parent.Commit()
	return err
}

// Discard drops all uncommitted changes.
func (c Cache) Discard() {
	c.tree.Rollback()
}
