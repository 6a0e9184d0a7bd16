// Package statstore persists and amends the POSIX stat record for every
// inode (spec §4.5). Field-selective updates go through Amend (server-set
// timestamps and link-count deltas) or the caller-supplied SetStat mask
// (mode/uid/gid/size/explicit times), the latter applied by namespace's
// setattr rather than here, since this package only owns the storage
// primitive.
package statstore

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/keycodec"
	"github.com/Seagate/cortx-posix-sub001/kvs"
)

// Stat is the full POSIX stat record (spec §3.1).
type Stat struct {
	Ino   ino.Ino
	Mode  os.FileMode
	Nlink uint32
	Uid   uint32
	Gid   uint32
	Size  int64
	Blocks int64

	Atime time.Time
	Mtime time.Time
	Ctime time.Time

	// CreateVerifier holds the NFSv4 createverf presented by an EXCLUSIVE
	// create_ex, so a retransmitted create with the same verifier can be
	// recognized as the original request rather than a genuine EEXIST (spec
	// §9 open question on create_ex atomicity). Zero for every non-exclusive
	// create.
	CreateVerifier [8]byte
}

// AmendFlags selects which fields Amend touches.
type AmendFlags uint32

const (
	Atime AmendFlags = 1 << iota
	Mtime
	Ctime
	IncrLink
	DecrLink
)

func key(i ino.Ino) []byte {
	return keycodec.EncodeInodeAttr(uint64(i), keycodec.TypeStat)
}

// Get reads the stat record for ino, failing with errno.ENOENT if absent.
func Get(ctx context.Context, store kvs.Store, i ino.Ino) (*Stat, error) {
	raw, err := store.Get(ctx, key(i))
	if err == kvs.ErrNotFound {
		return nil, errno.ENOENT
	}
	if err != nil {
		return nil, err
	}
	var st Stat
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Set writes (or overwrites) the stat record for st.Ino.
func Set(ctx context.Context, store kvs.Store, st *Stat) error {
	if st.Ino == 0 {
		return errno.EINVAL
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return store.Set(ctx, key(st.Ino), raw)
}

// Del removes the stat record for ino. Per spec §3.3 invariant 3, callers
// must only do this after all inbound links and the data object are gone.
func Del(ctx context.Context, store kvs.Store, i ino.Ino) error {
	return store.Del(ctx, key(i))
}

// Amend reads the current stat, applies the requested flags, and writes it
// back. DecrLink on an already-zero nlink fails with errno.EINVAL (spec
// §4.5: "fails when attempting to decrement below 0"); bringing nlink from 1
// to 0 is the normal last-unlink case and is allowed — callers own deciding
// what happens to a zero-nlink inode (immediate destruction vs. orphan
// marking if still open).
func Amend(ctx context.Context, store kvs.Store, i ino.Ino, flags AmendFlags, now time.Time) (*Stat, error) {
	st, err := Get(ctx, store, i)
	if err != nil {
		return nil, err
	}

	if flags&Atime != 0 {
		st.Atime = now
	}
	if flags&Mtime != 0 {
		st.Mtime = now
	}
	if flags&Ctime != 0 {
		st.Ctime = now
	}
	if flags&IncrLink != 0 {
		if st.Nlink == math.MaxUint32 {
			return nil, errno.EMLINK
		}
		st.Nlink++
	}
	if flags&DecrLink != 0 {
		if st.Nlink == 0 {
			return nil, errno.EINVAL
		}
		st.Nlink--
	}

	if err := Set(ctx, store, st); err != nil {
		return nil, err
	}
	return st, nil
}
