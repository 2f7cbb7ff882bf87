package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/penshort/roster/internal/model"
)

// Memory is an in-process store for users and receivers that honours the
// same foreign key rules as the PostgreSQL schema.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]model.User
	receivers map[string]model.Receiver
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]model.User),
		receivers: make(map[string]model.Receiver),
	}
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error { return nil }

// Users returns the user store view.
func (m *Memory) Users() *MemoryUsers { return &MemoryUsers{m: m} }

// Receivers returns the receiver store view.
func (m *Memory) Receivers() *MemoryReceivers { return &MemoryReceivers{m: m} }

// MemoryUsers is the user view of a Memory store.
type MemoryUsers struct{ m *Memory }

func (s *MemoryUsers) List(ctx context.Context) ([]*model.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]*model.User, 0, len(s.m.users))
	for _, id := range sortedKeys(s.m.users) {
		u := cloneUser(s.m.users[id])
		out = append(out, &u)
	}
	return out, nil
}

func (s *MemoryUsers) Get(ctx context.Context, id string) (*model.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (s *MemoryUsers) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = model.NewID()
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.users[u.ID] = cloneUser(*u)
	return nil
}

func (s *MemoryUsers) Update(ctx context.Context, u *model.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.users[u.ID]; !ok {
		return ErrNotFound
	}
	s.m.users[u.ID] = cloneUser(*u)
	return nil
}

// Delete removes the user and clears every receiver pointing at it.
func (s *MemoryUsers) Delete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.users, id)

	for rid, r := range s.m.receivers {
		if r.ReceiverID != nil && *r.ReceiverID == id {
			r.ReceiverID = nil
			s.m.receivers[rid] = r
		}
	}
	return nil
}

// MemoryReceivers is the receiver view of a Memory store.
type MemoryReceivers struct{ m *Memory }

func (s *MemoryReceivers) List(ctx context.Context) ([]*model.Receiver, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]*model.Receiver, 0, len(s.m.receivers))
	for _, id := range sortedKeys(s.m.receivers) {
		out = append(out, s.hydrate(s.m.receivers[id]))
	}
	return out, nil
}

func (s *MemoryReceivers) Get(ctx context.Context, id string) (*model.Receiver, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	r, ok := s.m.receivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.hydrate(r), nil
}

func (s *MemoryReceivers) Create(ctx context.Context, r *model.Receiver) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if !s.referenceExists(r.ReceiverID) {
		return ErrRelatedNotFound
	}
	if r.ID == "" {
		r.ID = model.NewID()
	}
	s.m.receivers[r.ID] = stripReceiver(*r)
	return nil
}

func (s *MemoryReceivers) Update(ctx context.Context, r *model.Receiver) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.receivers[r.ID]; !ok {
		return ErrNotFound
	}
	if !s.referenceExists(r.ReceiverID) {
		return ErrRelatedNotFound
	}
	s.m.receivers[r.ID] = stripReceiver(*r)
	return nil
}

func (s *MemoryReceivers) Delete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.receivers[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.receivers, id)
	return nil
}

// referenceExists must be called with the lock held.
func (s *MemoryReceivers) referenceExists(id *string) bool {
	if id == nil {
		return true
	}
	_, ok := s.m.users[*id]
	return ok
}

// hydrate must be called with the lock held.
func (s *MemoryReceivers) hydrate(r model.Receiver) *model.Receiver {
	out := r
	if r.ReceiverID != nil {
		id := *r.ReceiverID
		out.ReceiverID = &id
		if u, ok := s.m.users[id]; ok {
			u = cloneUser(u)
			out.Receiver = &u
		}
	}
	return &out
}

func stripReceiver(r model.Receiver) model.Receiver {
	r.Receiver = nil
	if r.ReceiverID != nil {
		id := *r.ReceiverID
		r.ReceiverID = &id
	}
	return r
}

func cloneUser(u model.User) model.User {
	if u.First != nil {
		first := *u.First
		u.First = &first
	}
	return u
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
