// Package inofid persists the ino->Fid mapping for regular files (spec
// §3.1, invariant 5): an Ino->Fid mapping exists iff the inode exists and is
// a regular file, and the referenced extent-store object exists.
package inofid

import (
	"context"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/keycodec"
	"github.com/Seagate/cortx-posix-sub001/kvs"
)

func key(i ino.Ino) []byte {
	return keycodec.EncodeInodeAttr(uint64(i), keycodec.TypeInoFid)
}

// Set binds ino to fid.
func Set(ctx context.Context, store kvs.Store, i ino.Ino, fid extstore.Fid) error {
	return store.Set(ctx, key(i), fid[:])
}

// Get resolves ino to its bound Fid, failing with errno.ENOENT if absent.
func Get(ctx context.Context, store kvs.Store, i ino.Ino) (extstore.Fid, error) {
	raw, err := store.Get(ctx, key(i))
	if err == kvs.ErrNotFound {
		return extstore.Fid{}, errno.ENOENT
	}
	if err != nil {
		return extstore.Fid{}, err
	}
	if len(raw) != 16 {
		return extstore.Fid{}, errno.EINVAL
	}
	var fid extstore.Fid
	copy(fid[:], raw)
	return fid, nil
}

// Del removes the mapping for ino.
func Del(ctx context.Context, store kvs.Store, i ino.Ino) error {
	return store.Del(ctx, key(i))
}
