// Package accesscheck maps caller credentials and a target Stat to a
// Unix-style owner/group/other permission check (spec §4.7 "Access-check
// semantics"). Root (uid 0) bypasses every check.
package accesscheck

import (
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/statstore"
)

// Flags are the access bits a caller requires. They compose: CreateEntity
// and DeleteEntity are both Write|Exec, matching the POSIX rule that
// creating or removing a directory entry needs write+search on the parent.
type Flags uint32

const (
	Read  Flags = 1 << 2
	Write Flags = 1 << 1
	Exec  Flags = 1 << 0

	Setattr      = Write
	CreateEntity = Write | Exec
	DeleteEntity = Write | Exec
	ListDir      = Exec
)

// Cred carries the caller's credentials for a single request. Per spec §5,
// credentials are immutable for the lifetime of a request.
type Cred struct {
	Uid uint32
	Gid uint32
}

// Check verifies that cred satisfies want against st's owner/group/other
// mode bits, returning errno.EPERM on failure.
func Check(cred Cred, st *statstore.Stat, want Flags) error {
	if cred.Uid == 0 {
		return nil
	}

	var shift uint
	switch {
	case cred.Uid == st.Uid:
		shift = 6
	case cred.Gid == st.Gid:
		shift = 3
	default:
		shift = 0
	}

	granted := Flags((uint32(st.Mode.Perm()) >> shift) & 0o7)
	if granted&want != want {
		return errno.EPERM
	}
	return nil
}
