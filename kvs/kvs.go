// Package kvs is the abstraction over the ordered key-value index that
// backs the namespace (spec §6.1). It is a thin contract, not an
// implementation: the real backend (the distributed object/index service
// named in spec §1) is an external collaborator. This package defines the
// interface every higher layer programs against plus an in-memory reference
// Store used by this repo's own tests, the way the teacher's gcs.Bucket
// interface is backed by a real GCS client in production and a fake bucket
// in fs/fstesting.
package kvs

import "context"

// Store is an ordered, transactional key-value index. Keys and values are
// opaque byte strings; keys are compared lexicographically, which the tree
// engine relies on for prefix scanning (spec §4.6).
type Store interface {
	// Get returns the value for key, or ErrNotFound if absent.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set upserts key to value.
	Set(ctx context.Context, key, value []byte) error

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key []byte) error

	// PrefixIter returns an iterator over every key with the given prefix, in
	// ascending lexicographic order. The iterator observes a snapshot as of
	// the call (spec §5: "concurrent inserts ... are not guaranteed to be
	// visible").
	PrefixIter(ctx context.Context, prefix []byte) (Iterator, error)

	// BeginTx opens a transaction scope. All Get/Set/Del/PrefixIter calls
	// made through the returned Tx are grouped for the backend's atomicity
	// guarantees, to the extent the backend offers any (spec §5, §7).
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transaction scope opened by Store.BeginTx. It embeds Store so that
// callers use the same Get/Set/Del/PrefixIter calls inside or outside a
// transaction.
type Tx interface {
	Store

	// Commit finalizes the transaction. After Commit, the Tx must not be
	// used again.
	Commit(ctx context.Context) error

	// Rollback discards every mutation made through this Tx. It is safe to
	// call Rollback after Commit has already succeeded (a no-op), mirroring
	// database/sql's Tx semantics, which keeps defer-based cleanup
	// unconditional at every call site (spec §5 "discard_transaction must
	// run on every error path between begin and end").
	Rollback(ctx context.Context) error
}

// Iterator walks a PrefixIter result set.
type Iterator interface {
	// Next advances to the next key, returning false when exhausted or on
	// error (check Err after Next returns false).
	Next(ctx context.Context) bool

	Key() []byte
	Value() []byte

	// Err returns the first error encountered during iteration, if any.
	Err() error

	// Close releases resources held by the iterator. Safe to call multiple
	// times.
	Close() error
}

// sentinelErr is a trivial comparable error, used instead of errors.New so
// errors.Is matches by identity without allocating per comparison.
type sentinelErr string

func (e sentinelErr) Error() string { return string(e) }

// ErrNotFound is returned by Get when the key is absent.
const ErrNotFound = sentinelErr("kvs: key not found")

// Index lifecycle, spec §6.1 index_{create,open,close,delete}. A Store
// implementation that models a single already-open index (like MemStore)
// may implement these as no-ops; a real backend dials out to create/open/
// delete a named index.
type IndexManager interface {
	IndexCreate(ctx context.Context, name string) error
	IndexOpen(ctx context.Context, name string) (Store, error)
	IndexClose(ctx context.Context, name string) error
	IndexDelete(ctx context.Context, name string) error
}
