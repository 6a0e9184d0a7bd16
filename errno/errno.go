// Package errno defines the POSIX -errno sentinels surfaced at the external
// boundary of the namespace and file-handle engine (spec §6.4, §7).
//
// Internally, code wraps backend errors with fmt.Errorf("...: %w", err) for
// context the way fs/inode does in the teacher; at the boundary an error is
// classified with As to recover a stable errno for the caller.
package errno

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Error is a POSIX errno sentinel. Two Errors with the same Errno compare
// equal under errors.Is.
type Error struct {
	Errno int
	name  string
}

func (e *Error) Error() string {
	return e.name
}

func (e *Error) Is(target error) bool {
	o, ok := target.(*Error)
	return ok && o.Errno == e.Errno
}

// Wrap wraps a base errno sentinel with op-specific context, the way the
// teacher wraps GCS errors ("StatObject: %v") without losing the errno
// classification.
func (e *Error) Wrap(op string) error {
	return fmt.Errorf("%s: %w", op, e)
}

// The Errno values are the real platform errno numbers from
// golang.org/x/sys/unix rather than hand-copied magic constants, so they
// stay correct across the architectures that package tracks.
var (
	ENOENT    = &Error{Errno: int(unix.ENOENT), name: "ENOENT"}
	EIO       = &Error{Errno: int(unix.EIO), name: "EIO"}
	ENOMEM    = &Error{Errno: int(unix.ENOMEM), name: "ENOMEM"}
	EACCES    = &Error{Errno: int(unix.EACCES), name: "EACCES"}
	EEXIST    = &Error{Errno: int(unix.EEXIST), name: "EEXIST"}
	EXDEV     = &Error{Errno: int(unix.EXDEV), name: "EXDEV"}
	ENOTDIR   = &Error{Errno: int(unix.ENOTDIR), name: "ENOTDIR"}
	EISDIR    = &Error{Errno: int(unix.EISDIR), name: "EISDIR"}
	EINVAL    = &Error{Errno: int(unix.EINVAL), name: "EINVAL"}
	ENOTEMPTY = &Error{Errno: int(unix.ENOTEMPTY), name: "ENOTEMPTY"}
	EMLINK    = &Error{Errno: int(unix.EMLINK), name: "EMLINK"}
	EPERM     = &Error{Errno: int(unix.EPERM), name: "EPERM"}
	EBADF     = &Error{Errno: int(unix.EBADF), name: "EBADF"}
	ENOBUFS   = &Error{Errno: int(unix.ENOBUFS), name: "ENOBUFS"}
	E2BIG     = &Error{Errno: int(unix.E2BIG), name: "E2BIG"}
	ENOTSUP   = &Error{Errno: int(unix.ENOTSUP), name: "ENOTSUP"}
)

// FromErrno converts a raw -errno int (as returned by a backend) back into
// one of the sentinels above, falling back to EIO for anything unmapped.
func FromErrno(n int) error {
	switch n {
	case 0:
		return nil
	case ENOENT.Errno:
		return ENOENT
	case EACCES.Errno:
		return EACCES
	case EEXIST.Errno:
		return EEXIST
	case EXDEV.Errno:
		return EXDEV
	case ENOTDIR.Errno:
		return ENOTDIR
	case EISDIR.Errno:
		return EISDIR
	case EINVAL.Errno:
		return EINVAL
	case ENOTEMPTY.Errno:
		return ENOTEMPTY
	case EMLINK.Errno:
		return EMLINK
	case EPERM.Errno:
		return EPERM
	case EBADF.Errno:
		return EBADF
	case ENOBUFS.Errno:
		return ENOBUFS
	case E2BIG.Errno:
		return E2BIG
	case ENOTSUP.Errno:
		return ENOTSUP
	case ENOMEM.Errno:
		return ENOMEM
	default:
		return EIO
	}
}
