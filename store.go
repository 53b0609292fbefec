package custody

//////////////////////////////////////////////////////////
// Defines all public interfaces for interacting with stores.
//
// The account keeps all of its durable state (signer links, threshold,
// guard flag, code pointers) in a KVStore. Ranged iteration is not part
// of the contract: the signer registry walks its own linked entries by
// key, so plain point operations are all that a backend must provide.

// ReadOnlyKVStore is a simple interface to read data.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists. Panics on nil key.
	Has(key []byte) (bool, error)
}

// KVStore is a simple interface to get/set data.
//
// For simplicity, we require all backing stores to implement this
// interface. They *may* implement other methods as well, but at least
// these are required.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
}

// SetDeleter is a subset of KVStore that is writing.
type SetDeleter interface {
	// Set sets the key. Panics on nil key.
	Set(key, value []byte) error

	// Delete deletes the key. Panics on nil key.
	Delete(key []byte) error
}

// Batch can write multiple operations to an underlying store as one
// atomic unit.
type Batch interface {
	SetDeleter
	Write() error
}

///////////////////////////////////////////////////////////
// Caching conditional execution
//
// These extend KVStore to allow grouping temporary writes which may be
// committed/discarded together. Like Postgresql SAVEPOINT / ROLLBACK TO
// SAVEPOINT. The execution pipeline relies on this to guarantee
// all-or-nothing application of a call batch.

// CacheableKVStore is a KVStore that supports CacheWrapping.
//
// CacheWrap() should not return a Committer, since Commit() on
// cache-wraps makes no sense.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap allows us to maintain a scratch-pad of uncommitted data
// that we can view with all queries.
//
// At the end, call Write to use the cached data, or Discard to drop it.
type KVCacheWrap interface {
	// CacheableKVStore allows us to use this Cache recursively.
	CacheableKVStore

	// Write syncs with the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}

///////////////////////////////////////////////////////////////
// Loading / committing data
//
// These reflect stores that can persist state to disk, load on start up,
// and maintain some history.

// CommitKVStore is a store that can persist state to disk and version it.
type CommitKVStore interface {
	// Get returns the value at last committed state.
	// Returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) ([]byte, error)

	// CacheWrap returns a scratch-pad to perform writes on.
	CacheWrap() KVCacheWrap

	// Commit the next version to disk, and returns info.
	Commit() (CommitID, error)

	// LoadLatestVersion loads the latest persisted version. If there was
	// a crash during the last commit, it is guaranteed to return a stable
	// state, even if older.
	LoadLatestVersion() error

	// LatestVersion returns info on the latest version saved to disk.
	LatestVersion() CommitID
}

// CommitID contains the tree version number and its merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
