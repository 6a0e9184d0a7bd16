package kvs

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory reference Store, ordered by lexicographic key
// comparison via a sorted slice and binary search. It exists purely as a
// test double for the real distributed index named in spec §1 — this
// module never ships it as the production backend, the same way the
// teacher's fake GCS bucket never ships in the real gcsfuse binary. A
// generic ordered-map library was not available anywhere in the example
// corpus, and sort.Search over a slice is the idiomatic stdlib way to keep
// an ordered index without pulling in a B-tree dependency for a 200-line
// test fixture (see DESIGN.md).
type MemStore struct {
	mu      sync.RWMutex
	entries []kv // kept sorted by Key
}

type kv struct {
	Key, Value []byte
}

// NewMemStore returns an empty, ready-to-use MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) find(key []byte) (idx int, found bool) {
	idx = sort.Search(len(s.entries), func(i int) bool {
		return bytes.Compare(s.entries[i].Key, key) >= 0
	})
	found = idx < len(s.entries) && bytes.Equal(s.entries[idx].Key, key)
	return
}

func (s *MemStore) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, found := s.find(key)
	if !found {
		return nil, ErrNotFound
	}
	v := make([]byte, len(s.entries[idx].Value))
	copy(v, s.entries[idx].Value)
	return v, nil
}

func (s *MemStore) Set(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	idx, found := s.find(key)
	if found {
		s.entries[idx].Value = v
		return nil
	}
	s.entries = append(s.entries, kv{})
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = kv{Key: k, Value: v}
	return nil
}

func (s *MemStore) Del(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, found := s.find(key)
	if !found {
		return nil
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return nil
}

func (s *MemStore) PrefixIter(_ context.Context, prefix []byte) (Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := sort.Search(len(s.entries), func(i int) bool {
		return bytes.Compare(s.entries[i].Key, prefix) >= 0
	})

	var snapshot []kv
	for i := start; i < len(s.entries); i++ {
		if !bytes.HasPrefix(s.entries[i].Key, prefix) {
			break
		}
		snapshot = append(snapshot, kv{
			Key:   append([]byte(nil), s.entries[i].Key...),
			Value: append([]byte(nil), s.entries[i].Value...),
		})
	}

	return &memIterator{entries: snapshot, cur: -1}, nil
}

func (s *MemStore) BeginTx(_ context.Context) (Tx, error) {
	return &memTx{store: s, writes: map[string][]byte{}, deletes: map[string]bool{}}, nil
}

type memIterator struct {
	entries []kv
	cur     int
}

func (it *memIterator) Next(context.Context) bool {
	it.cur++
	return it.cur < len(it.entries)
}

func (it *memIterator) Key() []byte   { return it.entries[it.cur].Key }
func (it *memIterator) Value() []byte { return it.entries[it.cur].Value }
func (it *memIterator) Err() error    { return nil }
func (it *memIterator) Close() error  { return nil }

// memTx buffers writes until Commit, giving read-your-own-writes semantics
// within the transaction while leaving the underlying store untouched until
// commit time. This is the "compensating actions on error" strategy spec §5
// falls back to when the backend doesn't offer true snapshot isolation: a
// discarded Tx never touched the store at all.
type memTx struct {
	store     *MemStore
	writes    map[string][]byte
	deletes   map[string]bool
	committed bool
	done      bool
}

func (t *memTx) Get(ctx context.Context, key []byte) ([]byte, error) {
	k := string(key)
	if t.deletes[k] {
		return nil, ErrNotFound
	}
	if v, ok := t.writes[k]; ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	return t.store.Get(ctx, key)
}

func (t *memTx) Set(_ context.Context, key, value []byte) error {
	k := string(key)
	delete(t.deletes, k)
	t.writes[k] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) Del(_ context.Context, key []byte) error {
	k := string(key)
	delete(t.writes, k)
	t.deletes[k] = true
	return nil
}

func (t *memTx) PrefixIter(ctx context.Context, prefix []byte) (Iterator, error) {
	base, err := t.store.PrefixIter(ctx, prefix)
	if err != nil {
		return nil, err
	}
	it := base.(*memIterator)

	merged := map[string][]byte{}
	for _, e := range it.entries {
		merged[string(e.Key)] = e.Value
	}
	for k := range t.deletes {
		if bytes.HasPrefix([]byte(k), prefix) {
			delete(merged, k)
		}
	}
	for k, v := range t.writes {
		if bytes.HasPrefix([]byte(k), prefix) {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]kv, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, kv{Key: []byte(k), Value: merged[k]})
	}
	return &memIterator{entries: entries, cur: -1}, nil
}

func (t *memTx) BeginTx(context.Context) (Tx, error) {
	// Nested transactions are not supported; this KVS has no savepoints.
	return nil, ErrNestedTx
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for k := range t.deletes {
		idx, found := t.store.find([]byte(k))
		if found {
			t.store.entries = append(t.store.entries[:idx], t.store.entries[idx+1:]...)
		}
	}
	for k, v := range t.writes {
		idx, found := t.store.find([]byte(k))
		if found {
			t.store.entries[idx].Value = v
			continue
		}
		t.store.entries = append(t.store.entries, kv{})
		copy(t.store.entries[idx+1:], t.store.entries[idx:])
		t.store.entries[idx] = kv{Key: []byte(k), Value: v}
	}

	t.done = true
	t.committed = true
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.writes = nil
	t.deletes = nil
	t.done = true
	return nil
}

// ErrNestedTx is returned by a Tx's BeginTx: this reference store has no
// savepoint support.
const ErrNestedTx = sentinelErr("kvs: nested transactions not supported")
