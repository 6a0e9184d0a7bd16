package filestate

import (
	"context"
	"os"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/inofid"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/namespace"
	"github.com/Seagate/cortx-posix-sub001/statstore"
	"github.com/Seagate/cortx-posix-sub001/tree"
)

// Open2 resolves name under pino — creating it first when create is true —
// and opens a new SHARE FileState against it with the requested flags,
// composing namespace.CreateEx's UNCHECKED/GUARDED/EXCLUSIVE state machine
// with the share-reservation check in Open (spec §4.9 "open2", grounded on
// kvsfs_internal.h's kvsfs_fsal_obj_handle.share combined with the create
// path kvsns_creat_ex runs before binding a file_state). When trunc is set
// and the target already existed (the create-mode table's "UNCHECKED | yes
// | open existing and truncate if O_TRUNC" row, spec §4.9), the existing
// object is truncated to zero the same way io.Path.Truncate does; a freshly
// created target is already zero-length, so trunc is a no-op for it.
func Open2(
	ctx context.Context,
	reg *Registry,
	store kvs.Store,
	ext extstore.Store,
	ns *namespace.Namespace,
	cred accesscheck.Cred,
	owner Owner,
	pino ino.Ino,
	name string,
	create bool,
	createMode namespace.CreateMode,
	perm os.FileMode,
	verifier [8]byte,
	trunc bool,
	flags OpenFlags,
	backend Backend,
) (*FileState, ino.Ino, *statstore.Stat, error) {
	var target ino.Ino
	var st *statstore.Stat
	var existed bool

	if create {
		i, s, created, err := ns.CreateEx(ctx, cred, pino, name, namespace.CreateExIn{
			Mode: createMode, Perm: perm, Verifier: verifier, Uid: cred.Uid, Gid: cred.Gid,
		})
		if err != nil {
			return nil, 0, nil, err
		}
		target, st, existed = i, s, !created
	} else {
		i, err := tree.Lookup(ctx, store, pino, name)
		if err != nil {
			return nil, 0, nil, err
		}
		s, err := statstore.Get(ctx, store, i)
		if err != nil {
			return nil, 0, nil, err
		}
		target, st, existed = i, s, true
	}

	if !st.Mode.IsRegular() {
		return nil, 0, nil, errno.EINVAL
	}

	if flags&Read != 0 {
		if err := accesscheck.Check(cred, st, accesscheck.Read); err != nil {
			return nil, 0, nil, err
		}
	}
	if flags&Write != 0 {
		if err := accesscheck.Check(cred, st, accesscheck.Write); err != nil {
			return nil, 0, nil, err
		}
	}

	if trunc && existed {
		if err := truncateExisting(ctx, store, ext, ns, target, st); err != nil {
			return nil, 0, nil, err
		}
	}

	state := &FileState{Kind: KindShare, Owner: owner}
	if err := Open(ctx, reg, state, flags, target, false, backend); err != nil {
		return nil, 0, nil, err
	}
	return state, target, st, nil
}

// truncateExisting truncates target's backing object to zero length and
// merges the resulting size/block/timestamp hint into st in place, the
// same merge io.Path.Truncate performs for an already-open descriptor.
func truncateExisting(ctx context.Context, store kvs.Store, ext extstore.Store, ns *namespace.Namespace, target ino.Ino, st *statstore.Stat) error {
	fid, err := inofid.Get(ctx, store, target)
	if err != nil {
		return err
	}
	hint, err := ext.Truncate(ctx, fid, 0)
	if err != nil {
		return err
	}
	st.Size = hint.Size
	st.Blocks = hint.Blocks
	now := ns.Clock.Now()
	if hint.HasMtime {
		st.Mtime = now
	}
	if hint.HasCtime {
		st.Ctime = now
	}
	return statstore.Set(ctx, store, st)
}
