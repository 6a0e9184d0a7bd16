// Package orphan implements the "opened_and_deleted" marker supplementing
// spec §4.7's unlink contract with a detail the distillation left implicit:
// when unlink drops an inode's nlink to zero while it is still open, the
// original (original_source/src/nfs-ganesha/FSAL_KVSFS/kvsfs_internal.c)
// tracks that fact in the in-process file-state bookkeeping so the last
// close can perform final destruction. This repo persists the same marker
// as a KVS record (rather than keeping it purely in memory) so a crash
// between unlink and last-close doesn't lose track of a dangling inode that
// still has no name anywhere in the tree — cheap to add since stat/dentry
// records are already persisted this way.
package orphan

import (
	"context"

	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/keycodec"
	"github.com/Seagate/cortx-posix-sub001/kvs"
)

func key(i ino.Ino) []byte {
	return keycodec.EncodeInodeAttr(uint64(i), keycodec.TypeOrphan)
}

// Mark records that ino has zero on-disk nlink but is still referenced by
// at least one open FileState.
func Mark(ctx context.Context, store kvs.Store, i ino.Ino) error {
	return store.Set(ctx, key(i), []byte{1})
}

// IsMarked reports whether ino was marked orphaned.
func IsMarked(ctx context.Context, store kvs.Store, i ino.Ino) (bool, error) {
	_, err := store.Get(ctx, key(i))
	if err == kvs.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes the marker, e.g. once final destruction has run.
func Clear(ctx context.Context, store kvs.Store, i ino.Ino) error {
	return store.Del(ctx, key(i))
}
