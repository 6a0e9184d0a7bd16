package namespace

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

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

// Rename moves child (oldParent, oldName) to (newParent, newName),
// replacing an existing target at the destination if one exists and it is
// compatible (same file-vs-directory kind, and empty if a directory). When
// the two parents differ this fetches both parent stats concurrently via
// errgroup, the same two-way fan-out shape the teacher uses for concurrent
// GCS lookups, since the two reads are independent until both are in hand
// (spec §4.7).
func (n *Namespace) Rename(ctx context.Context, cred accesscheck.Cred, oldParent ino.Ino, oldName string, newParent ino.Ino, newName string) error {
	var destroyedFid extstore.Fid
	var destroyRegular bool

	err := txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		oldParentSt, newParentSt, err := fetchParents(ctx, tx, oldParent, newParent)
		if err != nil {
			return err
		}
		if err := accesscheck.Check(cred, oldParentSt, accesscheck.DeleteEntity); err != nil {
			return err
		}
		if err := accesscheck.Check(cred, newParentSt, accesscheck.CreateEntity); err != nil {
			return err
		}

		child, err := tree.Lookup(ctx, tx, oldParent, oldName)
		if err != nil {
			return err
		}
		if oldParent == newParent && oldName == newName {
			return nil
		}

		childSt, err := statstore.Get(ctx, tx, child)
		if err != nil {
			return err
		}
		if childSt.Mode.IsDir() && newParent == child {
			return errno.EINVAL
		}

		now := n.now()
		if err := replaceRenameTarget(ctx, n, tx, newParent, newName, childSt, now, &destroyedFid, &destroyRegular); err != nil {
			return err
		}

		if oldParent == newParent {
			return tree.RenameLink(ctx, tx, oldParent, child, oldName, newName, now)
		}
		return tree.Move(ctx, tx, oldParent, newParent, child, oldName, newName, now)
	})
	if err != nil {
		return err
	}
	if destroyRegular && !destroyedFid.IsZero() {
		_ = n.Ext.Del(ctx, destroyedFid)
	}
	return nil
}

func fetchParents(ctx context.Context, tx kvs.Tx, oldParent, newParent ino.Ino) (*statstore.Stat, *statstore.Stat, error) {
	if oldParent == newParent {
		st, err := loadDir(ctx, tx, oldParent)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	}

	var oldSt, newSt *statstore.Stat
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := loadDir(gctx, tx, oldParent)
		if err != nil {
			return err
		}
		oldSt = st
		return nil
	})
	g.Go(func() error {
		st, err := loadDir(gctx, tx, newParent)
		if err != nil {
			return err
		}
		newSt = st
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return oldSt, newSt, nil
}

// replaceRenameTarget detaches and, if warranted, destroys whatever dentry
// already occupies (newParent, newName), enforcing the usual rename
// overwrite rules: a file may only replace a file, a directory only an
// empty directory.
func replaceRenameTarget(ctx context.Context, n *Namespace, tx kvs.Tx, newParent ino.Ino, newName string, incoming *statstore.Stat, now time.Time, outFid *extstore.Fid, outRegular *bool) error {
	existing, lookErr := tree.Lookup(ctx, tx, newParent, newName)
	switch lookErr {
	case nil:
	case errno.ENOENT:
		return nil
	default:
		return lookErr
	}

	existingSt, err := statstore.Get(ctx, tx, existing)
	if err != nil {
		return err
	}
	if existingSt.Mode.IsDir() != incoming.Mode.IsDir() {
		if incoming.Mode.IsDir() {
			return errno.ENOTDIR
		}
		return errno.EISDIR
	}
	if existingSt.Mode.IsDir() {
		hasChildren, err := tree.HasChildren(ctx, tx, existing)
		if err != nil {
			return err
		}
		if hasChildren {
			return errno.ENOTEMPTY
		}
	}

	if err := tree.Detach(ctx, tx, newParent, existing, newName, now); err != nil {
		return err
	}

	replacedSt, err := statstore.Get(ctx, tx, existing)
	if err != nil {
		return err
	}
	if replacedSt.Nlink > 0 {
		return nil
	}

	if n.Opens != nil && n.Opens.HasOpenState(existing) {
		return orphan.Mark(ctx, tx, existing)
	}
	return n.destroyInode(ctx, tx, existing, replacedSt, outFid, outRegular)
}
