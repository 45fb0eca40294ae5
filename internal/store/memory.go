package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ugaemi/arena-server/internal/account"
)

// MemoryStore implements Store in process memory. Used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]account.Account
	runs     []account.Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]account.Account)}
}

// FindByID looks up an account by internal ID.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

// Create inserts a new account.
func (s *MemoryStore) Create(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.ID] = *acc
	return nil
}

// UpdateLastLogin updates the last login timestamp.
func (s *MemoryStore) UpdateLastLogin(_ context.Context, id string) error {
	return s.update(id, func(acc *account.Account) { acc.LastLoginAt = time.Now() })
}

// UpdateNickname updates the account nickname.
func (s *MemoryStore) UpdateNickname(_ context.Context, id string, nickname string) error {
	return s.update(id, func(acc *account.Account) { acc.Nickname = nickname })
}

func (s *MemoryStore) update(id string, fn func(acc *account.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	fn(&acc)
	s.accounts[id] = acc
	return nil
}

// SaveRun inserts a finished run.
func (s *MemoryStore) SaveRun(_ context.Context, run *account.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

// TopRuns returns the best runs, best first.
func (s *MemoryStore) TopRuns(_ context.Context, limit int) ([]*account.Run, error) {
	s.mu.RLock()
	runs := make([]*account.Run, 0, len(s.runs))
	for i := range s.runs {
		r := s.runs[i]
		runs = append(runs, &r)
	}
	s.mu.RUnlock()

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Better(runs[j]) })
	return truncate(runs, normalizeLimit(limit)), nil
}

// RunsByAccount returns an account's most recent runs, newest first.
func (s *MemoryStore) RunsByAccount(_ context.Context, accountID string, limit int) ([]*account.Run, error) {
	s.mu.RLock()
	var runs []*account.Run
	for i := range s.runs {
		if s.runs[i].AccountID == accountID {
			r := s.runs[i]
			runs = append(runs, &r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].EndedAt.After(runs[j].EndedAt) })
	return truncate(runs, normalizeLimit(limit)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func truncate(runs []*account.Run, limit int) []*account.Run {
	if len(runs) > limit {
		return runs[:limit]
	}
	return runs
}
