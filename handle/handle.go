// Package handle implements the in-memory file handle object (spec §4.8):
// an {fs ref, inode, cached stat} triple built from an inode, a dentry
// lookup, the root, or a wire buffer, with a fixed-size on-wire
// serialization and an in-memory dedup key for use in client maps/sets.
//
// This mirrors the teacher's fs/inode.Inode contract (ID/Name/Attributes,
// constructed via NewDirInode/NewFileInode/etc. and torn down explicitly)
// translated from "GCS object name" identity to the spec's KVS inode
// identity.
package handle

import (
	"context"
	"encoding/binary"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
	"github.com/Seagate/cortx-posix-sub001/tree"
)

// WireSize is the fixed size of the on-wire file handle record (spec §6.3):
// an 8-byte reserved fsid followed by an 8-byte inode number.
const WireSize = 16

// Fh is an in-memory file handle. It owns its embedded Stat exclusively;
// Destroy releases it.
type Fh struct {
	FsRef uint64 // reserved for multi-filesystem routing; 0 in the single-fs case
	Ino   ino.Ino
	Stat  *statstore.Stat
}

// Key is the in-memory dedup key (fs_ref, ino), comparable with ==. It must
// never be persisted (spec §4.8): it has no relationship to the on-wire
// format beyond sharing the inode number.
type Key struct {
	FsRef uint64
	Ino   ino.Ino
}

// DedupKey returns fh's in-memory dedup key for use in client maps/sets.
func (fh *Fh) DedupKey() Key {
	return Key{FsRef: fh.FsRef, Ino: fh.Ino}
}

// Valid reports whether fh satisfies the invariant required of every
// non-destroyed handle: non-zero ino, non-nil stat, and stat.Ino == ino
// (spec §4.8 "Invariant").
func (fh *Fh) Valid() bool {
	return fh != nil && fh.Ino != 0 && fh.Stat != nil && fh.Stat.Ino == fh.Ino
}

// FromIno builds a handle for ino, loading its stat from the store unless
// st is supplied (in which case it is copied in directly, e.g. right after a
// create that already has the fresh stat in hand).
func FromIno(ctx context.Context, store kvs.Store, fsRef uint64, i ino.Ino, st *statstore.Stat) (*Fh, error) {
	if st == nil {
		loaded, err := statstore.Get(ctx, store, i)
		if err != nil {
			return nil, err
		}
		st = loaded
	}
	return &Fh{FsRef: fsRef, Ino: i, Stat: st}, nil
}

// Lookup resolves name under fh (which must be a directory) into a new
// handle, after an access-check Read on fh. The root's own ".." resolves to
// itself, since the root has no parent (spec §3.3 invariant 4, §4.8).
func Lookup(ctx context.Context, store kvs.Store, cred accesscheck.Cred, fh *Fh, name string) (*Fh, error) {
	if err := accesscheck.Check(cred, fh.Stat, accesscheck.Read); err != nil {
		return nil, err
	}

	if fh.Ino == ino.RootIno && name == ".." {
		return fh, nil
	}

	child, err := tree.Lookup(ctx, store, fh.Ino, name)
	if err != nil {
		return nil, err
	}
	return FromIno(ctx, store, fh.FsRef, child, nil)
}

// GetRoot builds a handle for the filesystem root and performs an access
// check (Read) on it (spec §4.8).
func GetRoot(ctx context.Context, store kvs.Store, cred accesscheck.Cred, fsRef uint64) (*Fh, error) {
	fh, err := FromIno(ctx, store, fsRef, ino.RootIno, nil)
	if err != nil {
		return nil, err
	}
	if err := accesscheck.Check(cred, fh.Stat, accesscheck.Read); err != nil {
		return nil, err
	}
	return fh, nil
}

// Serialize writes fh's fixed-size wire record into buf (spec §6.3). buf
// must be at least WireSize bytes, or errno.ENOBUFS is returned.
func Serialize(fh *Fh, buf []byte) (int, error) {
	if len(buf) < WireSize {
		return 0, errno.ENOBUFS
	}
	binary.LittleEndian.PutUint64(buf[0:8], fh.FsRef)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(fh.Ino))
	return WireSize, nil
}

// SerializedSize returns the constant on-wire handle size.
func SerializedSize() int {
	return WireSize
}

// Deserialize reads a fixed-size wire record from buf and constructs a
// handle via FromIno. fsid is carried into the handle's FsRef but not used
// to select between filesystems in this single-fs implementation (spec
// §6.3, §9 open question).
func Deserialize(ctx context.Context, store kvs.Store, buf []byte) (*Fh, error) {
	if len(buf) < WireSize {
		return nil, errno.EINVAL
	}
	fsRef := binary.LittleEndian.Uint64(buf[0:8])
	i := ino.Ino(binary.LittleEndian.Uint64(buf[8:16]))
	if i == 0 {
		return nil, errno.EINVAL
	}
	return FromIno(ctx, store, fsRef, i, nil)
}

// Destroy releases fh's embedded stat. Idempotent, including on a nil
// handle (spec §4.8).
func Destroy(fh *Fh) {
	if fh == nil {
		return
	}
	fh.Stat = nil
	fh.Ino = 0
}
