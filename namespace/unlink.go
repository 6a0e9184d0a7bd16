package namespace

import (
	"context"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/orphan"
	"github.com/Seagate/cortx-posix-sub001/statstore"
	"github.com/Seagate/cortx-posix-sub001/tree"
	"github.com/Seagate/cortx-posix-sub001/txn"
)

// Unlink removes a non-directory dentry. If the removal drops nlink to
// zero, the inode is destroyed immediately unless it is still held open,
// in which case it is marked orphaned for ReleaseIfOrphaned to finish off
// once no FileState references it (spec §4.7, §4.9).
func (n *Namespace) Unlink(ctx context.Context, cred accesscheck.Cred, pino ino.Ino, name string) error {
	var destroyedFid extstore.Fid
	var destroyRegular bool

	err := txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		parentSt, err := loadDir(ctx, tx, pino)
		if err != nil {
			return err
		}
		if err := accesscheck.Check(cred, parentSt, accesscheck.DeleteEntity); err != nil {
			return err
		}

		child, err := tree.Lookup(ctx, tx, pino, name)
		if err != nil {
			return err
		}
		childSt, err := statstore.Get(ctx, tx, child)
		if err != nil {
			return err
		}
		if childSt.Mode.IsDir() {
			return errno.EISDIR
		}

		now := n.now()
		if err := tree.Detach(ctx, tx, pino, child, name, now); err != nil {
			return err
		}

		updated, err := statstore.Get(ctx, tx, child)
		if err != nil {
			return err
		}
		if updated.Nlink > 0 {
			return nil
		}

		if n.Opens != nil && n.Opens.HasOpenState(child) {
			return orphan.Mark(ctx, tx, child)
		}
		return n.destroyInode(ctx, tx, child, updated, &destroyedFid, &destroyRegular)
	})
	if err != nil {
		return err
	}
	if destroyRegular && !destroyedFid.IsZero() {
		_ = n.Ext.Del(ctx, destroyedFid)
	}
	return nil
}

// Rmdir removes an empty subdirectory, undoing the nlink bump Mkdir applied
// to the parent for this subdirectory's ".." reference (spec §4.7).
func (n *Namespace) Rmdir(ctx context.Context, cred accesscheck.Cred, pino ino.Ino, name string) error {
	return txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		parentSt, err := loadDir(ctx, tx, pino)
		if err != nil {
			return err
		}
		if err := accesscheck.Check(cred, parentSt, accesscheck.DeleteEntity); err != nil {
			return err
		}

		child, err := tree.Lookup(ctx, tx, pino, name)
		if err != nil {
			return err
		}
		childSt, err := statstore.Get(ctx, tx, child)
		if err != nil {
			return err
		}
		if !childSt.Mode.IsDir() {
			return errno.ENOTDIR
		}

		hasChildren, err := tree.HasChildren(ctx, tx, child)
		if err != nil {
			return err
		}
		if hasChildren {
			return errno.ENOTEMPTY
		}

		now := n.now()
		if err := tree.Detach(ctx, tx, pino, child, name, now); err != nil {
			return err
		}
		if _, err := statstore.Amend(ctx, tx, pino, statstore.DecrLink, now); err != nil {
			return err
		}

		var fid extstore.Fid
		var isRegular bool
		return n.destroyInode(ctx, tx, child, childSt, &fid, &isRegular)
	})
}

// ReleaseIfOrphaned finishes destroying an inode that Unlink or Rename
// previously marked orphaned, provided Opens reports no open state for it
// (spec §4.9 delete-on-close). filestate.Close does not call it; the
// orphaned inode stays in place until ReleaseIfOrphaned is invoked
// directly.
func (n *Namespace) ReleaseIfOrphaned(ctx context.Context, i ino.Ino) error {
	marked, err := orphan.IsMarked(ctx, n.Store, i)
	if err != nil || !marked {
		return err
	}
	if n.Opens != nil && n.Opens.HasOpenState(i) {
		return nil
	}

	var fid extstore.Fid
	var isRegular bool
	err = txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		st, err := statstore.Get(ctx, tx, i)
		if err != nil {
			return err
		}
		return n.destroyInode(ctx, tx, i, st, &fid, &isRegular)
	})
	if err != nil {
		return err
	}
	if isRegular && !fid.IsZero() {
		_ = n.Ext.Del(ctx, fid)
	}
	return nil
}
