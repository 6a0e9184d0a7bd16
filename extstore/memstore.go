package extstore

import (
	"context"
	"sync"

	"github.com/Seagate/cortx-posix-sub001/errno"
)

// MemStore is an in-memory reference Store: a plain byte slice per Fid. It
// is synchronous by construction, so Fsync and the stable flag on Write are
// both no-ops, matching spec §4.10's note that commit() may be a no-op "in
// this revision".
type MemStore struct {
	mu      sync.Mutex
	objects map[Fid][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{objects: map[Fid][]byte{}}
}

func (s *MemStore) Create(_ context.Context, fid Fid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[Fid][]byte{}
	}
	if _, ok := s.objects[fid]; ok {
		return errno.EEXIST
	}
	s.objects[fid] = []byte{}
	return nil
}

func (s *MemStore) Del(_ context.Context, fid Fid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[fid]; !ok {
		return errno.ENOENT
	}
	delete(s.objects, fid)
	return nil
}

func (s *MemStore) Exists(fid Fid) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[fid]
	return ok
}

func (s *MemStore) Read(_ context.Context, fid Fid, off int64, buf []byte) (int, bool, StatHint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[fid]
	if !ok {
		return 0, false, StatHint{}, errno.ENOENT
	}
	if off < 0 {
		return 0, false, StatHint{}, errno.EINVAL
	}
	if off >= int64(len(data)) {
		return 0, true, StatHint{HasAtime: true}, nil
	}

	n := copy(buf, data[off:])
	eof := off+int64(n) >= int64(len(data))
	return n, eof, StatHint{HasAtime: true}, nil
}

func (s *MemStore) Write(_ context.Context, fid Fid, off int64, buf []byte, _ bool) (int, StatHint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[fid]
	if !ok {
		return 0, StatHint{}, errno.ENOENT
	}
	if off < 0 {
		return 0, StatHint{}, errno.EINVAL
	}

	end := off + int64(len(buf))
	if end > int64(len(data)) {
		grown := make([]byte, end)
		copy(grown, data)
		data = grown
	}
	copy(data[off:end], buf)
	s.objects[fid] = data

	return len(buf), StatHint{
		Size:     int64(len(data)),
		Blocks:   blocksFor(int64(len(data))),
		HasMtime: true,
		HasCtime: true,
	}, nil
}

func (s *MemStore) Truncate(_ context.Context, fid Fid, newSize int64) (StatHint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[fid]
	if !ok {
		return StatHint{}, errno.ENOENT
	}
	if newSize < 0 {
		return StatHint{}, errno.EINVAL
	}

	if newSize <= int64(len(data)) {
		data = data[:newSize]
	} else {
		grown := make([]byte, newSize)
		copy(grown, data)
		data = grown
	}
	s.objects[fid] = data

	return StatHint{
		Size:     newSize,
		Blocks:   blocksFor(newSize),
		HasMtime: true,
		HasCtime: true,
	}, nil
}

func (s *MemStore) Attach(_ context.Context, fid Fid, externalObjID []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[Fid][]byte{}
	}
	s.objects[fid] = append([]byte(nil), externalObjID...)
	return nil
}

func (s *MemStore) Fsync(context.Context, Fid) error {
	return nil
}

const blockSize = 512

func blocksFor(size int64) int64 {
	return (size + blockSize - 1) / blockSize
}
