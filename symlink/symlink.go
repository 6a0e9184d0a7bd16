// Package symlink persists symlink target bodies (spec §3.1, §4.7). A
// symlink body is an opaque blob up to ~4 KiB, keyed by the symlink's own
// inode number.
package symlink

import (
	"context"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/keycodec"
	"github.com/Seagate/cortx-posix-sub001/kvs"
)

// MaxTargetLen bounds a symlink body, per spec §3.1 ("opaque blob, up to ~4
// KiB").
const MaxTargetLen = 4096

func key(i ino.Ino) []byte {
	return keycodec.EncodeInodeAttr(uint64(i), keycodec.TypeSymlink)
}

// Set writes the symlink body for ino, failing with errno.E2BIG if target
// exceeds MaxTargetLen.
func Set(ctx context.Context, store kvs.Store, i ino.Ino, target []byte) error {
	if len(target) > MaxTargetLen {
		return errno.E2BIG
	}
	return store.Set(ctx, key(i), target)
}

// Get reads the symlink body, failing with errno.ENOENT if absent.
func Get(ctx context.Context, store kvs.Store, i ino.Ino) ([]byte, error) {
	v, err := store.Get(ctx, key(i))
	if err == kvs.ErrNotFound {
		return nil, errno.ENOENT
	}
	return v, err
}

// Del removes the symlink body for ino.
func Del(ctx context.Context, store kvs.Store, i ino.Ino) error {
	return store.Del(ctx, key(i))
}
