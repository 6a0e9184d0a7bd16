// Package tree implements the dentry/parent-link primitives of spec §4.6:
// attach, detach, rename_link, lookup, has_children, iter_children. Every
// operation here is meant to run inside a single kvs.Tx, the way the
// teacher's DirInode methods are documented LOCKS_REQUIRED(d) and composed
// by the higher fs package rather than taking their own locks.
package tree

import (
	"context"
	"time"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/keycodec"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
)

// Lookup decodes the dentry (pino, name) with a single KVS get, returning
// errno.ENOENT if no such child exists (spec §4.6).
func Lookup(ctx context.Context, store kvs.Store, pino ino.Ino, name string) (ino.Ino, error) {
	key, err := keycodec.EncodeDentry(uint64(pino), name)
	if err != nil {
		return 0, err
	}
	raw, err := store.Get(ctx, key)
	if err == kvs.ErrNotFound {
		return 0, errno.ENOENT
	}
	if err != nil {
		return 0, err
	}
	return decodeIno(raw)
}

// Attach writes the dentry, bumps the reverse parent-link counter for
// (ino, pino), and amends the parent's ctime+mtime (spec §4.6).
func Attach(ctx context.Context, tx kvs.Tx, pino, child ino.Ino, name string, now time.Time) error {
	dkey, err := keycodec.EncodeDentry(uint64(pino), name)
	if err != nil {
		return err
	}

	if err := tx.Set(ctx, dkey, encodeIno(child)); err != nil {
		return err
	}

	if err := incParentLink(ctx, tx, child, pino); err != nil {
		return err
	}

	_, err = statstore.Amend(ctx, tx, pino, statstore.Ctime|statstore.Mtime, now)
	return err
}

// Detach removes the dentry, decrements the parent-link counter (deleting
// it at zero), and amends ino's ctime+nlink and the parent's ctime+mtime
// (spec §4.6).
func Detach(ctx context.Context, tx kvs.Tx, pino, child ino.Ino, name string, now time.Time) error {
	dkey, err := keycodec.EncodeDentry(uint64(pino), name)
	if err != nil {
		return err
	}
	if err := tx.Del(ctx, dkey); err != nil {
		return err
	}

	if err := decParentLink(ctx, tx, child, pino); err != nil {
		return err
	}

	if _, err := statstore.Amend(ctx, tx, child, statstore.Ctime|statstore.DecrLink, now); err != nil {
		return err
	}
	_, err = statstore.Amend(ctx, tx, pino, statstore.Ctime|statstore.Mtime, now)
	return err
}

// RenameLink deletes the old dentry and writes the new one under the same
// parent, then bumps the parent's ctime. The caller must already have
// confirmed Lookup(pino, oldName) == child (spec §4.6).
func RenameLink(ctx context.Context, tx kvs.Tx, pino, child ino.Ino, oldName, newName string, now time.Time) error {
	oldKey, err := keycodec.EncodeDentry(uint64(pino), oldName)
	if err != nil {
		return err
	}
	newKey, err := keycodec.EncodeDentry(uint64(pino), newName)
	if err != nil {
		return err
	}

	if err := tx.Del(ctx, oldKey); err != nil {
		return err
	}
	if err := tx.Set(ctx, newKey, encodeIno(child)); err != nil {
		return err
	}

	_, err = statstore.Amend(ctx, tx, pino, statstore.Ctime, now)
	return err
}

// Move relocates child from (oldPino, oldName) to (newPino, newName) across
// two different parents, updating only the reverse parent-link counters —
// unlike Detach/Attach, nlink is left untouched, since a rename re-parents
// an existing link rather than removing and recreating one (spec §4.7
// rename). Both parents' ctime/mtime are amended.
func Move(ctx context.Context, tx kvs.Tx, oldPino, newPino, child ino.Ino, oldName, newName string, now time.Time) error {
	oldKey, err := keycodec.EncodeDentry(uint64(oldPino), oldName)
	if err != nil {
		return err
	}
	newKey, err := keycodec.EncodeDentry(uint64(newPino), newName)
	if err != nil {
		return err
	}

	if err := tx.Del(ctx, oldKey); err != nil {
		return err
	}
	if err := tx.Set(ctx, newKey, encodeIno(child)); err != nil {
		return err
	}

	if err := decParentLink(ctx, tx, child, oldPino); err != nil {
		return err
	}
	if err := incParentLink(ctx, tx, child, newPino); err != nil {
		return err
	}

	if _, err := statstore.Amend(ctx, tx, oldPino, statstore.Ctime|statstore.Mtime, now); err != nil {
		return err
	}
	if oldPino != newPino {
		if _, err := statstore.Amend(ctx, tx, newPino, statstore.Ctime|statstore.Mtime, now); err != nil {
			return err
		}
	}
	return nil
}

// HasChildren performs a prefix_find on ino's dentry prefix, returning true
// iff the first hit lies under that prefix (spec §4.6, §8 property 5).
func HasChildren(ctx context.Context, store kvs.Store, i ino.Ino) (bool, error) {
	it, err := store.PrefixIter(ctx, keycodec.EncodeDentryPrefix(uint64(i)))
	if err != nil {
		return false, err
	}
	defer it.Close()
	return it.Next(ctx), it.Err()
}

// DirEntry is one (name, child ino) pair yielded by IterChildren.
type DirEntry struct {
	Name string
	Ino  ino.Ino
}

// IterChildren prefix-scans starting at ino's dentry prefix, invoking cb for
// every (name, child) pair in key order until cb returns false or the scan
// leaves the prefix. Afterward, ino's atime is amended (spec §4.6, §8
// property 6).
func IterChildren(ctx context.Context, store kvs.Store, i ino.Ino, now time.Time, cb func(DirEntry) bool) error {
	it, err := store.PrefixIter(ctx, keycodec.EncodeDentryPrefix(uint64(i)))
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next(ctx) {
		_, name, err := keycodec.DecodeDentry(it.Key())
		if err != nil {
			return err
		}
		child, err := decodeIno(it.Value())
		if err != nil {
			return err
		}
		if !cb(DirEntry{Name: name, Ino: child}) {
			break
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	_, err = statstore.Amend(ctx, store, i, statstore.Atime, now)
	return err
}

func incParentLink(ctx context.Context, tx kvs.Tx, child, pino ino.Ino) error {
	key := keycodec.EncodeParent(uint64(child), uint64(pino))
	n, err := getParentLinkCount(ctx, tx, key)
	if err != nil {
		return err
	}
	return setParentLinkCount(ctx, tx, key, n+1)
}

func decParentLink(ctx context.Context, tx kvs.Tx, child, pino ino.Ino) error {
	key := keycodec.EncodeParent(uint64(child), uint64(pino))
	n, err := getParentLinkCount(ctx, tx, key)
	if err != nil {
		return err
	}
	if n <= 1 {
		return tx.Del(ctx, key)
	}
	return setParentLinkCount(ctx, tx, key, n-1)
}

func getParentLinkCount(ctx context.Context, tx kvs.Tx, key []byte) (uint32, error) {
	raw, err := tx.Get(ctx, key)
	if err == kvs.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeU32(raw), nil
}

func setParentLinkCount(ctx context.Context, tx kvs.Tx, key []byte, n uint32) error {
	if n == 0 {
		return tx.Del(ctx, key)
	}
	return tx.Set(ctx, key, encodeU32(n))
}
