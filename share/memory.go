package share

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store. Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	shares map[string]map[string]Object // user -> id -> object
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shares: make(map[string]map[string]Object),
	}
}

func (s *MemoryStore) Put(_ context.Context, user, id string, obj Object) error {
	if err := validate(user, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shares[user]; !ok {
		s.shares[user] = make(map[string]Object)
	}

	// Copy so callers can reuse their buffer
	obj.Data = append([]byte(nil), obj.Data...)
	s.shares[user][id] = obj
	return nil
}

func (s *MemoryStore) Get(_ context.Context, user, id string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.shares[user][id]
	if !ok {
		return Object{}, ErrNotFound
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, nil
}

func (s *MemoryStore) List(_ context.Context, user string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.shares[user]))
	for id, obj := range s.shares[user] {
		infos = append(infos, Info{ID: id, Size: len(obj.Data), Uploaded: obj.Uploaded})
	}
	SortInfos(infos)
	return infos, nil
}

func (s *MemoryStore) Delete(_ context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userShares, ok := s.shares[user]
	if !ok {
		return ErrNotFound
	}
	if _, ok := userShares[id]; !ok {
		return ErrNotFound
	}
	delete(userShares, id)

	if len(userShares) == 0 {
		delete(s.shares, user)
	}
	return nil
}

// SortInfos orders newest first, then by id.
func SortInfos(infos []Info) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].Uploaded.Equal(infos[j].Uploaded) {
			return infos[i].Uploaded.After(infos[j].Uploaded)
		}
		return infos[i].ID < infos[j].ID
	})
}

func validate(user, id string) error {
	if err := ValidateName(user); err != nil {
		return err
	}
	return ValidateName(id)
}
