// Package filestate implements the per-open file state machine and its
// NFSv4-style share-reservation bookkeeping (spec §4.9), grounded directly
// on original_source/src/nfs-ganesha/FSAL_KVSFS/kvsfs_internal.h's
// kvsfs_file_state / kvsfs_file_state_open / kvsfs_file_state_close and the
// fsal_share struct it wraps.
package filestate

import (
	"context"
	"sync"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/ino"
)

// OpenFlags is both a requested open mode and a share-deny mask. The zero
// value, Closed, is deliberately distinct from every other flag so the
// CLOSED/OPEN invariant in spec §4.9 ("CLOSED ⇔ openflags == CLOSED ∧
// fd.ino == 0") can be checked by comparing against the zero value.
type OpenFlags uint32

const (
	Closed OpenFlags = 0

	Read OpenFlags = 1 << iota
	Write
	DenyRead
	DenyWrite
)

// Owner identifies the client-side (pid, tid) pair that requested an open,
// matching spec §3.1's open_descriptor.owner.
type Owner struct {
	Pid int64
	Tid int64
}

// Kind distinguishes a SHARE state (an ordinary open) from a LOCK state
// (which indirects through a SHARE state via ShareState) or a DELEG state
// (which is opened directly, spec §4.9 "Delegations"). Close handles every
// Kind the same way and performs no delete-on-close for any of them.
type Kind int

const (
	KindShare Kind = iota
	KindLock
	KindDeleg
)

// FileState is a single open, lock, or delegation handed out to a client.
// A "closed" state has Openflags == Closed and Fd.Ino == 0; an "open" state
// has both non-zero. This invariant is checked at entry/exit of every state
// transition below (spec §3.1, §4.9).
type FileState struct {
	Kind      Kind
	Openflags OpenFlags
	Owner     Owner
	Fd        struct {
		Ino ino.Ino
	}

	// ShareState is the back-reference a LOCK state uses to find its
	// associated SHARE state (spec §4.9 find_fd).
	ShareState *FileState
}

// IsOpen reports whether fs currently holds an open reservation.
func (fs *FileState) IsOpen() bool {
	return fs.Openflags != Closed && fs.Fd.Ino != 0
}

// IsClosed reports the CLOSED invariant.
func (fs *FileState) IsClosed() bool {
	return fs.Openflags == Closed && fs.Fd.Ino == 0
}

// Share is the per-inode share-reservation counter (spec §4.9, Glossary).
type Share struct {
	NRead      uint32
	NWrite     uint32
	NDenyRead  uint32
	NDenyWrite uint32
}

func (s *Share) add(flags OpenFlags, delta int32) {
	if flags&Read != 0 {
		s.NRead = addClamped(s.NRead, delta)
	}
	if flags&Write != 0 {
		s.NWrite = addClamped(s.NWrite, delta)
	}
	if flags&DenyRead != 0 {
		s.NDenyRead = addClamped(s.NDenyRead, delta)
	}
	if flags&DenyWrite != 0 {
		s.NDenyWrite = addClamped(s.NDenyWrite, delta)
	}
}

func addClamped(n uint32, delta int32) uint32 {
	if delta < 0 && uint32(-delta) > n {
		return 0
	}
	return uint32(int64(n) + int64(delta))
}

// conflicts reports whether requesting `want` on an inode whose current
// aggregate share is s would violate another client's deny reservation, or
// vice versa (spec §4.9, §8 "Opening for WRITE on an inode already opened
// for WRITE with deny_write fails").
func (s *Share) conflicts(want OpenFlags) bool {
	if want&Read != 0 && s.NDenyRead > 0 {
		return true
	}
	if want&Write != 0 && s.NDenyWrite > 0 {
		return true
	}
	if want&DenyRead != 0 && s.NRead > 0 {
		return true
	}
	if want&DenyWrite != 0 && s.NWrite > 0 {
		return true
	}
	return false
}

// Registry is the in-memory, per-filesystem table of share counters, one
// per inode with at least one open state (spec §5 "Per-inode open counters
// and share-reservation state live in memory only").
type Registry struct {
	mu     sync.Mutex
	shares map[ino.Ino]*Share
	opens  map[ino.Ino]int // count of FileStates with Fd.Ino == this inode
}

func NewRegistry() *Registry {
	return &Registry{
		shares: map[ino.Ino]*Share{},
		opens:  map[ino.Ino]int{},
	}
}

// HasOpenState reports whether any FileState currently references i. This
// satisfies namespace's narrow OpenTracker interface used by unlink (spec
// §4.7).
func (r *Registry) HasOpenState(i ino.Ino) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens[i] > 0
}

// TryNewState checks the NFS-style share conflict for transitioning an
// inode's reservation from old to new; on success it updates the counters
// by (-old, +new) and returns nil, leaving counters unchanged on conflict
// (spec §4.9).
func (r *Registry) TryNewState(i ino.Ino, old, new OpenFlags) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.shares[i]
	if s == nil {
		s = &Share{}
	}

	// Conflict-check against the aggregate with our own prior reservation
	// removed, so that e.g. reopening for the same flags never conflicts
	// with oneself.
	probe := *s
	probe.add(old, -1)
	if probe.conflicts(new) {
		return errno.EACCES
	}

	s.add(old, -1)
	s.add(new, 1)
	r.shares[i] = s
	return nil
}

// SetNewState unconditionally updates the counters (-old, +new). Used on
// close and on rollback after a failed backend open (spec §4.9).
func (r *Registry) SetNewState(i ino.Ino, old, new OpenFlags) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.shares[i]
	if s == nil {
		s = &Share{}
		r.shares[i] = s
	}
	s.add(old, -1)
	s.add(new, 1)
}

func (r *Registry) trackOpen(i ino.Ino) {
	r.mu.Lock()
	r.opens[i]++
	r.mu.Unlock()
}

func (r *Registry) trackClose(i ino.Ino) {
	r.mu.Lock()
	if r.opens[i] > 0 {
		r.opens[i]--
	}
	r.mu.Unlock()
}

// Backend is the (currently no-op) per-open hook reserved for future
// persistent open tracking (spec §4.9 step 3). It is a function value
// rather than an interface method so tests can inject failures without a
// mock type.
type Backend struct {
	Open  func(ctx context.Context, i ino.Ino, flags OpenFlags) error
	Close func(ctx context.Context, i ino.Ino) error
}

func noopBackend() Backend {
	return Backend{
		Open:  func(context.Context, ino.Ino, OpenFlags) error { return nil },
		Close: func(context.Context, ino.Ino) error { return nil },
	}
}

// Open implements file_state_open (spec §4.9): transitions state into an
// open reservation for flags against obj, rolling back the share counters
// if the backend open hook fails.
func Open(ctx context.Context, reg *Registry, state *FileState, flags OpenFlags, obj ino.Ino, isReopen bool, backend Backend) error {
	if !isReopen && !state.IsClosed() {
		return errno.EINVAL
	}
	if backend.Open == nil {
		backend = noopBackend()
	}

	old := state.Openflags
	if err := reg.TryNewState(obj, old, flags); err != nil {
		return err
	}

	if err := backend.Open(ctx, obj, flags); err != nil {
		reg.SetNewState(obj, flags, old)
		return err
	}

	if old == Closed {
		reg.trackOpen(obj)
	}
	state.Openflags = flags
	state.Fd.Ino = obj
	return nil
}

// Close implements file_state_close (spec §4.9): runs the backend close
// hook, then unconditionally returns the share counters to Closed and marks
// state closed. Any error from the backend hook is surfaced to the caller,
// but the counters are decremented regardless (spec §7: "the share counters
// are still decremented; the state is considered closed from the core's
// perspective").
func Close(ctx context.Context, reg *Registry, state *FileState, backend Backend) error {
	if !state.IsOpen() {
		return errno.EBADF
	}
	if backend.Close == nil {
		backend = noopBackend()
	}

	obj := state.Fd.Ino
	closeErr := backend.Close(ctx, obj)

	reg.SetNewState(obj, state.Openflags, Closed)
	reg.trackClose(obj)
	state.Openflags = Closed
	state.Fd.Ino = 0

	return closeErr
}
