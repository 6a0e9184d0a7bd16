package namespace

import (
	"context"
	"os"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/inofid"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
	"github.com/Seagate/cortx-posix-sub001/tree"
	"github.com/Seagate/cortx-posix-sub001/txn"
)

func loadDir(ctx context.Context, store kvs.Store, i ino.Ino) (*statstore.Stat, error) {
	st, err := statstore.Get(ctx, store, i)
	if err != nil {
		return nil, err
	}
	if !st.Mode.IsDir() {
		return nil, errno.ENOTDIR
	}
	return st, nil
}

// Mkdir creates an empty subdirectory under pino (spec §4.7). A new
// directory starts with nlink 2 (itself, plus the implicit ".." reference
// held by its parent); the parent's own nlink is bumped by one to account
// for that ".." reference, the usual POSIX subdirectory-count convention.
func (n *Namespace) Mkdir(ctx context.Context, cred accesscheck.Cred, pino ino.Ino, name string, perm os.FileMode) (ino.Ino, *statstore.Stat, error) {
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
			Ino: newIno, Mode: os.ModeDir | perm.Perm(), Nlink: 2,
			Uid: cred.Uid, Gid: cred.Gid,
			Atime: now, Mtime: now, Ctime: now,
		}
		if err := statstore.Set(ctx, tx, st); err != nil {
			return err
		}
		if err := tree.Attach(ctx, tx, pino, newIno, name, now); err != nil {
			return err
		}
		if _, err := statstore.Amend(ctx, tx, pino, statstore.IncrLink, now); err != nil {
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

// Create is the plain (non-exclusive, non-guarded) create used by simple
// OPEN/CREATE requests with no atomicity requirement: equivalent to
// CreateEx with CreateUnchecked.
func (n *Namespace) Create(ctx context.Context, cred accesscheck.Cred, pino ino.Ino, name string, perm os.FileMode) (ino.Ino, *statstore.Stat, error) {
	i, st, _, err := n.CreateEx(ctx, cred, pino, name, CreateExIn{Mode: CreateUnchecked, Perm: perm, Uid: cred.Uid, Gid: cred.Gid})
	return i, st, err
}

// CreateEx implements create_ex's UNCHECKED/GUARDED/EXCLUSIVE/
// EXCLUSIVE4_1 create-mode state machine (spec §4.7, §9 open question 2).
// It resolves the atomicity question the spec leaves open by committing
// the KVS-side create (dentry + stat + fid binding) in one transaction and
// only then creating the zero-length backing object in ExtStore; if that
// second step fails, the KVS-side effects are rolled back via
// txn.WithCompensation's post-commit compensation rather than leaving a
// dangling entry with no data object behind it.
func (n *Namespace) CreateEx(ctx context.Context, cred accesscheck.Cred, pino ino.Ino, name string, in CreateExIn) (ino.Ino, *statstore.Stat, bool, error) {
	var resultIno ino.Ino
	var resultSt *statstore.Stat
	var created bool
	var newFid extstore.Fid

	fn := func(tx kvs.Tx) error {
		if in.Mode == CreateExclusive41 {
			return errno.ENOTSUP
		}

		parentSt, err := loadDir(ctx, tx, pino)
		if err != nil {
			return err
		}
		if err := accesscheck.Check(cred, parentSt, accesscheck.CreateEntity); err != nil {
			return err
		}

		existing, lookErr := tree.Lookup(ctx, tx, pino, name)
		switch lookErr {
		case nil:
			existingSt, err := statstore.Get(ctx, tx, existing)
			if err != nil {
				return err
			}
			switch in.Mode {
			case CreateGuarded:
				return errno.EEXIST
			case CreateExclusive:
				if !verifierMatches(existingSt, in.Verifier) {
					return errno.EEXIST
				}
				resultIno, resultSt, created = existing, existingSt, false
			default: // CreateUnchecked
				resultIno, resultSt, created = existing, existingSt, false
			}
			return nil
		case errno.ENOENT:
			// fall through to creation below
		default:
			return lookErr
		}

		newIno, err := ino.Next(ctx, tx)
		if err != nil {
			return err
		}
		now := n.now()
		st := &statstore.Stat{
			Ino: newIno, Mode: in.Perm.Perm(), Nlink: 1,
			Uid: in.Uid, Gid: in.Gid,
			Atime: now, Mtime: now, Ctime: now,
		}
		if in.Mode == CreateExclusive {
			st.CreateVerifier = in.Verifier
		}
		if err := statstore.Set(ctx, tx, st); err != nil {
			return err
		}
		if err := tree.Attach(ctx, tx, pino, newIno, name, now); err != nil {
			return err
		}

		newFid = extstore.NewFid()
		if err := inofid.Set(ctx, tx, newIno, newFid); err != nil {
			return err
		}

		resultIno, resultSt, created = newIno, st, true
		return nil
	}

	postCommit := func() error {
		if !created {
			return nil
		}
		return n.Ext.Create(ctx, newFid)
	}
	compensate := func() {
		if created {
			_ = n.unlinkJustCreated(ctx, pino, name)
		}
	}

	if err := txn.WithCompensation(ctx, n.Store, fn, postCommit, compensate); err != nil {
		return 0, nil, false, err
	}
	return resultIno, resultSt, created, nil
}

// unlinkJustCreated tears down the KVS-side effects of a CreateEx whose
// backing ExtStore object could not be created. The entry was never opened
// (it only just committed), so no orphan check is needed.
func (n *Namespace) unlinkJustCreated(ctx context.Context, pino ino.Ino, name string) error {
	return txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		child, err := tree.Lookup(ctx, tx, pino, name)
		if err != nil {
			return err
		}
		now := n.now()
		if err := tree.Detach(ctx, tx, pino, child, name, now); err != nil {
			return err
		}
		st, err := statstore.Get(ctx, tx, child)
		if err != nil {
			return err
		}
		var fid extstore.Fid
		var isRegular bool
		return n.destroyInode(ctx, tx, child, st, &fid, &isRegular)
	})
}
