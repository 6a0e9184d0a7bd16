package namespace

import (
	"context"
	"os"
	"time"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/inofid"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
	"github.com/Seagate/cortx-posix-sub001/txn"
)

// GetAttr returns i's stat record. No extra access check is applied beyond
// whatever the caller already performed to resolve the handle; POSIX stat()
// never requires more than execute-search on the containing path (spec
// §4.7).
func (n *Namespace) GetAttr(ctx context.Context, i ino.Ino) (*statstore.Stat, error) {
	return statstore.Get(ctx, n.Store, i)
}

// SetAttrIn carries setattr's optional fields; a nil pointer leaves that
// attribute untouched.
type SetAttrIn struct {
	Mode  *os.FileMode
	Uid   *uint32
	Gid   *uint32
	Size  *int64
	Atime *time.Time
	Mtime *time.Time
}

// SetAttr applies the requested attribute changes, owner- or root-gated
// (spec §4.7). A size change on a regular file truncates the backing
// ExtStore object first — outside any KVS transaction, since ExtStore is
// not part of it — and the resulting StatHint (and requested size) are then
// merged into the stat record inside a transaction, the same merge-after-
// I/O shape the read/write/truncate path uses (spec §4.10).
func (n *Namespace) SetAttr(ctx context.Context, cred accesscheck.Cred, i ino.Ino, in SetAttrIn) (*statstore.Stat, error) {
	cur, err := statstore.Get(ctx, n.Store, i)
	if err != nil {
		return nil, err
	}
	if cred.Uid != 0 && cred.Uid != cur.Uid {
		return nil, errno.EPERM
	}

	var hint *extstore.StatHint
	if in.Size != nil && *in.Size != cur.Size {
		if !cur.Mode.IsRegular() {
			return nil, errno.EINVAL
		}
		if err := accesscheck.Check(cred, cur, accesscheck.Write); err != nil {
			return nil, err
		}
		fid, err := inofid.Get(ctx, n.Store, i)
		if err != nil {
			return nil, err
		}
		h, err := n.Ext.Truncate(ctx, fid, *in.Size)
		if err != nil {
			return nil, err
		}
		hint = &h
	}

	var result *statstore.Stat
	err = txn.Run(ctx, n.Store, func(tx kvs.Tx) error {
		st, err := statstore.Get(ctx, tx, i)
		if err != nil {
			return err
		}
		if in.Mode != nil {
			st.Mode = (st.Mode &^ os.ModePerm) | (*in.Mode & os.ModePerm)
		}
		if in.Uid != nil {
			st.Uid = *in.Uid
		}
		if in.Gid != nil {
			st.Gid = *in.Gid
		}
		if in.Atime != nil {
			st.Atime = *in.Atime
		}
		if in.Mtime != nil {
			st.Mtime = *in.Mtime
		}
		if hint != nil {
			st.Size = hint.Size
			st.Blocks = hint.Blocks
			if hint.HasMtime && in.Mtime == nil {
				st.Mtime = n.now()
			}
		}
		st.Ctime = n.now()

		if err := statstore.Set(ctx, tx, st); err != nil {
			return err
		}
		result = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
