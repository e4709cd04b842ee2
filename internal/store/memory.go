package store

import (
	"context"
	"sort"
	"sync"

	"github.com/abhisek/quizbook/internal/progress"
)

// MemoryStore is an in-process ProgressRepo. It stores encoded records so
// that callers get the same round-trip behavior as the durable backends.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, username string) (*progress.Progress, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.records[username]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return progress.Unmarshal(data)
}

func (s *MemoryStore) Save(_ context.Context, username string, p *progress.Progress) error {
	if err := checkUsername(username); err != nil {
		return err
	}
	data, err := progress.Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[username] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, username string) error {
	if err := checkUsername(username); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.records, username)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Usernames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
