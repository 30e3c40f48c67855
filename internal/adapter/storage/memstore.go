package storage

import (
	"context"
	"path"
	"sync"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/port"
)

// MemStore is an in-process port.KVStore with the same conditional-commit
// semantics as the Redis adapter: every write bumps a per-key version,
// and Atomic commits only if no watched key's version moved since the
// watch began. Used by tests and the race demo when Redis is absent.
type MemStore struct {
	mu       sync.Mutex
	values   map[string]string
	docs     map[string]domain.Document
	versions map[string]uint64
}

func NewMemStore() *MemStore {
	return &MemStore{
		values:   make(map[string]string),
		docs:     make(map[string]domain.Document),
		versions: make(map[string]uint64),
	}
}

func (s *MemStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyAbsent
	}
	return val, nil
}

func (s *MemStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applySet(key, value)
	return nil
}

func (s *MemStore) GetDocument(ctx context.Context, key string) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, domain.ErrKeyAbsent
	}
	return copyDoc(doc), nil
}

func (s *MemStore) PutDocument(ctx context.Context, key string, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyPut(key, doc)
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.docs, key)
	s.versions[key]++
	return nil
}

func (s *MemStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.values {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	for k := range s.docs {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *MemStore) Atomic(ctx context.Context, watchKeys []string, fn func(port.AtomicUnit) error) error {
	s.mu.Lock()
	watched := make(map[string]uint64, len(watchKeys))
	for _, k := range watchKeys {
		watched[k] = s.versions[k]
	}
	s.mu.Unlock()

	// fn runs without the lock so concurrent units can interleave; this
	// is what makes the race observable.
	unit := &memUnit{store: s}
	if err := fn(unit); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range watched {
		if s.versions[k] != v {
			return domain.ErrTxConflict
		}
	}
	for _, apply := range unit.writes {
		apply()
	}
	return nil
}

// applySet and applyPut require s.mu held.
func (s *MemStore) applySet(key, value string) {
	s.values[key] = value
	s.versions[key]++
}

func (s *MemStore) applyPut(key string, doc domain.Document) {
	s.docs[key] = copyDoc(doc)
	s.versions[key]++
}

type memUnit struct {
	store  *MemStore
	writes []func()
}

func (u *memUnit) Get(ctx context.Context, key string) (string, error) {
	return u.store.Get(ctx, key)
}

func (u *memUnit) GetDocument(ctx context.Context, key string) (domain.Document, error) {
	return u.store.GetDocument(ctx, key)
}

func (u *memUnit) StageSet(key, value string) {
	u.writes = append(u.writes, func() { u.store.applySet(key, value) })
}

func (u *memUnit) StagePutDocument(key string, doc domain.Document) {
	staged := copyDoc(doc)
	u.writes = append(u.writes, func() { u.store.applyPut(key, staged) })
}

func copyDoc(doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
