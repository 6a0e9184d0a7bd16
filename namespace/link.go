package namespace

import (
	"context"
	"os"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
	"github.com/Seagate/cortx-posix-sub001/symlink"
	"github.com/Seagate/cortx-posix-sub001/tree"
	"github.com/Seagate/cortx-posix-sub001/txn"
)

// Link creates a new dentry under pino pointing at the existing inode
// target, incrementing its nlink. Hard-linking a directory is rejected
// with errno.EPERM, the usual POSIX restriction (spec §4.7).
func (n *Namespace) Link(ctx context.Context, cred accesscheck.Cred, pino ino.Ino, name string, target ino.Ino) error {
	return txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		parentSt, err := loadDir(ctx, tx, pino)
		if err != nil {
			return err
		}
		if err := accesscheck.Check(cred, parentSt, accesscheck.CreateEntity); err != nil {
			return err
		}

		if _, err := tree.Lookup(ctx, tx, pino, name); err == nil {
			return errno.EEXIST
		} else if err != errno.ENOENT {
			return err
		}

		targetSt, err := statstore.Get(ctx, tx, target)
		if err != nil {
			return err
		}
		if targetSt.Mode.IsDir() {
			return errno.EPERM
		}

		now := n.now()
		if err := tree.Attach(ctx, tx, pino, target, name, now); err != nil {
			return err
		}
		_, err = statstore.Amend(ctx, tx, target, statstore.Ctime|statstore.IncrLink, now)
		return err
	})
}

// Symlink creates a new symlink inode under pino with the given target
// body (spec §4.7). The symlink's own mode carries no meaningful
// permission bits on most POSIX systems; this repo stores 0777 like the
// original.
func (n *Namespace) Symlink(ctx context.Context, cred accesscheck.Cred, pino ino.Ino, name string, target []byte) (ino.Ino, *statstore.Stat, error) {
	var resultIno ino.Ino
	var resultSt *statstore.Stat

	err := txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		parentSt, err := loadDir(ctx, tx, pino)
		if err != nil {
			return err
		}
		if err := accesscheck.Check(cred, parentSt, accesscheck.CreateEntity); err != nil {
			return err
		}

		if _, err := tree.Lookup(ctx, tx, pino, name); err == nil {
			return errno.EEXIST
		} else if err != errno.ENOENT {
			return err
		}

		newIno, err := ino.Next(ctx, tx)
		if err != nil {
			return err
		}
		now := n.now()
		st := &statstore.Stat{
			Ino: newIno, Mode: os.ModeSymlink | 0o777, Nlink: 1,
			Uid: cred.Uid, Gid: cred.Gid,
			Atime: now, Mtime: now, Ctime: now,
			Size: int64(len(target)),
		}
		if err := statstore.Set(ctx, tx, st); err != nil {
			return err
		}
		if err := symlink.Set(ctx, tx, newIno, target); err != nil {
			return err
		}
		if err := tree.Attach(ctx, tx, pino, newIno, name, now); err != nil {
			return err
		}

		resultIno, resultSt = newIno, st
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return resultIno, resultSt, nil
}

// Readlink returns i's symlink target body, failing with errno.EINVAL if i
// is not a symlink (spec §4.7, §6.3 "readlink buffer-size contract" —
// callers that need to bound the returned length should compare against
// len(target) before copying into a fixed-size NFS buffer).
func (n *Namespace) Readlink(ctx context.Context, i ino.Ino) ([]byte, error) {
	st, err := statstore.Get(ctx, n.Store, i)
	if err != nil {
		return nil, err
	}
	if st.Mode&os.ModeSymlink == 0 {
		return nil, errno.EINVAL
	}
	body, err := symlink.Get(ctx, n.Store, i)
	if err != nil {
		return nil, err
	}
	if _, err := statstore.Amend(ctx, n.Store, i, statstore.Atime, n.now()); err != nil {
		return nil, err
	}
	return body, nil
}
