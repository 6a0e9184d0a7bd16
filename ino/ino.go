// Package ino implements the monotonic inode allocator (spec §4.4). The
// counter is persisted as a single KVS key; RootIno (2) is reserved and the
// counter is seeded to RootIno the first time a namespace is created, so the
// first allocation returns RootIno+1.
package ino

import (
	"context"
	"encoding/binary"

	"github.com/Seagate/cortx-posix-sub001/keycodec"
	"github.com/Seagate/cortx-posix-sub001/kvs"
)

// Ino is a 64-bit filesystem-local inode number. Zero means unset/invalid.
type Ino uint64

// RootIno is the reserved inode number of the filesystem root directory
// (spec §3.1).
const RootIno Ino = 2

// Init seeds the persistent counter the first time a namespace index is
// created. It is idempotent: if the counter already exists, it is left
// untouched.
func Init(ctx context.Context, store kvs.Store) error {
	_, err := store.Get(ctx, keycodec.InoCounterKey)
	if err == nil {
		return nil
	}
	if err != kvs.ErrNotFound {
		return err
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(RootIno))
	return store.Set(ctx, keycodec.InoCounterKey, buf)
}

// Next atomically increments the persistent counter and returns the
// post-increment value, the way the teacher's inode-like IDs (fuseops
// InodeID) are allocated monotonically by the front-end — here the
// allocation itself lives in the KVS, via a read-modify-write inside the
// caller's transaction, since spec §4.4 permits either a KVS-native counter
// primitive or explicit read-modify-write.
func Next(ctx context.Context, tx kvs.Tx) (Ino, error) {
	raw, err := tx.Get(ctx, keycodec.InoCounterKey)
	var cur uint64
	switch err {
	case nil:
		cur = binary.BigEndian.Uint64(raw)
	case kvs.ErrNotFound:
		cur = uint64(RootIno)
	default:
		return 0, err
	}

	cur++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, cur)
	if err := tx.Set(ctx, keycodec.InoCounterKey, buf); err != nil {
		return 0, err
	}
	return Ino(cur), nil
}
