package store

import (
	"sync"

	"cdpinspect/pkg/domain"
)

// ConsoleStore accumulates console output and thrown exceptions.
type ConsoleStore struct {
	mu   sync.RWMutex
	logs []domain.ConsoleLog
}

func NewConsoleStore() *ConsoleStore {
	return &ConsoleStore{}
}

func (s *ConsoleStore) Append(entry domain.ConsoleLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
}

// Snapshot returns a copy of the collected entries.
func (s *ConsoleStore) Snapshot() []domain.ConsoleLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ConsoleLog, len(s.logs))
	copy(out, s.logs)
	return out
}

func (s *ConsoleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

// Clear empties the collection wholesale.
func (s *ConsoleStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
}
