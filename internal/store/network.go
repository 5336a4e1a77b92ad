package store

import (
	"sync"

	"cdpinspect/pkg/domain"
)

// NetworkStore accumulates request lifecycle records. The receive loop is the
// only mutator; readers get copies. Lookups go through an index keyed by
// request id so per-event updates stay cheap on busy pages.
type NetworkStore struct {
	mu      sync.RWMutex
	records []domain.NetworkRequest
	index   map[domain.RequestID]int
}

func NewNetworkStore() *NetworkStore {
	return &NetworkStore{index: make(map[domain.RequestID]int)}
}

// Add appends a new pending record. A record with the same request id (a
// redirect re-send) replaces the index entry so later events patch the most
// recent occurrence.
func (s *NetworkStore) Add(rec domain.NetworkRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.index[rec.RequestID] = len(s.records) - 1
}

// AttachResponse patches the record for id with its response sub-record and
// marks it responded. Returns false on a lookup miss or if the record already
// left the pending/responded states.
func (s *NetworkStore) AttachResponse(id domain.RequestID, resp domain.ResponseInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	rec := &s.records[i]
	if rec.Status != domain.StatusPending && rec.Status != domain.StatusResponded {
		return false
	}
	rec.Response = &resp
	rec.Status = domain.StatusResponded
	return true
}

// Complete marks the record for id completed and stores the encoded byte
// length. Returns false on a lookup miss.
func (s *NetworkStore) Complete(id domain.RequestID, encodedDataLength float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.records[i].Status = domain.StatusCompleted
	s.records[i].EncodedDataLength = encodedDataLength
	return true
}

// Fail marks the record for id failed with its error text and cancellation
// flag. Returns false on a lookup miss.
func (s *NetworkStore) Fail(id domain.RequestID, errorText string, canceled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.records[i].Status = domain.StatusFailed
	s.records[i].ErrorText = errorText
	s.records[i].Canceled = canceled
	return true
}

// Snapshot returns a copy of the records so callers can filter and sort
// without touching accumulation state.
func (s *NetworkStore) Snapshot() []domain.NetworkRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.NetworkRequest, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns a copy of the record for id.
func (s *NetworkStore) Get(id domain.RequestID) (domain.NetworkRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.NetworkRequest{}, false
	}
	return s.records[i], true
}

func (s *NetworkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear drops all records. Individual records are never deletable.
func (s *NetworkStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[domain.RequestID]int)
}
