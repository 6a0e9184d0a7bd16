// Package extstore defines the ExtStore capability (spec §6.2): the
// external collaborator that persists a file's byte data, keyed by an
// opaque 128-bit object identifier. Like kvs.Store, this package is a
// contract plus an in-memory reference implementation for tests; the real
// extent store is out of scope (spec §1).
package extstore

import (
	"context"

	"github.com/google/uuid"
)

// Fid is the 128-bit opaque object identifier bound 1:1 to a regular file
// inode (spec §3.1). It is generated with google/uuid, the same library the
// teacher pulls in for other 128-bit identifiers (gcsfuse request IDs).
type Fid [16]byte

// NewFid allocates a fresh, random Fid.
func NewFid() Fid {
	return Fid(uuid.New())
}

// IsZero reports whether f is the zero value, used to detect "no object
// bound" (e.g. a directory or symlink inode, which never gets an Ino->Fid
// mapping per spec §3.3 invariant 5).
func (f Fid) IsZero() bool {
	return f == Fid{}
}

func (f Fid) String() string {
	return uuid.UUID(f).String()
}

// StatHint carries the subset of stat fields an I/O operation may learn
// about as a side effect (new size, block count, timestamps), so the
// namespace/io layer can merge them into the persisted Stat without a
// second round trip (spec §4.10).
type StatHint struct {
	Size   int64
	Blocks int64

	HasAtime bool
	HasMtime bool
	HasCtime bool
}

// Store is the ExtStore capability consumed by the I/O path.
type Store interface {
	Create(ctx context.Context, fid Fid) error
	Del(ctx context.Context, fid Fid) error

	// Read copies up to len(buf) bytes starting at off into buf, returning
	// the number of bytes read, whether EOF was reached, and any stat hint
	// learned (e.g. an updated atime).
	Read(ctx context.Context, fid Fid, off int64, buf []byte) (n int, eof bool, hint StatHint, err error)

	// Write stores len(buf) bytes at off. If stable is true the write must
	// be durable before returning (equivalent to a following Fsync).
	Write(ctx context.Context, fid Fid, off int64, buf []byte, stable bool) (n int, hint StatHint, err error)

	Truncate(ctx context.Context, fid Fid, newSize int64) (hint StatHint, err error)

	// Attach imports an externally-created object under fid, reserved for a
	// future "import" operation (spec §6.2); not exercised by namespace ops
	// in this revision.
	Attach(ctx context.Context, fid Fid, externalObjID []byte) error

	// Fsync flushes any buffered writes for fid. May be a no-op if the
	// store is already synchronous (spec §4.10 commit()).
	Fsync(ctx context.Context, fid Fid) error
}
