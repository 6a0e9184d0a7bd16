package namespace

import (
	"context"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/tree"
)

// DirEntry is one (name, child) pair yielded by Readdir.
type DirEntry = tree.DirEntry

// Readdir lists i's children in key order, invoking cb for each until cb
// returns false or the directory is exhausted (spec §4.7, §4.6
// IterChildren). ListDir (execute/search) access is required on i.
func (n *Namespace) Readdir(ctx context.Context, cred accesscheck.Cred, i ino.Ino, cb func(DirEntry) bool) error {
	st, err := loadDir(ctx, n.Store, i)
	if err != nil {
		return err
	}
	if err := accesscheck.Check(cred, st, accesscheck.ListDir); err != nil {
		return err
	}
	return tree.IterChildren(ctx, n.Store, i, n.now(), cb)
}
