package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/credence/internal/model"
)

// MemoryStore keeps history in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.HistoryRecord
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.HistoryRecord)}
}

// Insert stores a copy of rec
func (s *MemoryStore) Insert(_ context.Context, rec *model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = *rec
	return nil
}

// Get returns the record if userID owns it
func (s *MemoryStore) Get(_ context.Context, userID, id string) (*model.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok || rec.UserID != userID {
		return nil, notFound(id)
	}
	return &rec, nil
}

// List returns one sorted page of the user's records
func (s *MemoryStore) List(_ context.Context, q model.HistoryQuery) (*model.HistoryPage, error) {
	q = q.Normalize()

	s.mu.RLock()
	var owned []model.HistoryRecord
	for _, rec := range s.records {
		if rec.UserID == q.UserID {
			owned = append(owned, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		a, b := owned[i], owned[j]
		c := compare(a, b, q.SortBy)
		if c == 0 {
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.After(b.Timestamp)
			}
			return a.ID < b.ID
		}
		if q.Ascending {
			return c < 0
		}
		return c > 0
	})

	page := []model.HistoryRecord{}
	if off := q.Offset(); off < len(owned) {
		end := off + q.Limit
		if end > len(owned) {
			end = len(owned)
		}
		page = owned[off:end]
	}

	return &model.HistoryPage{
		Analyses:   page,
		Pagination: model.NewPagination(q.Page, q.Limit, len(owned)),
	}, nil
}

func compare(a, b model.HistoryRecord, field string) int {
	switch field {
	case model.SortCredibilityScore:
		return a.CredibilityScore - b.CredibilityScore
	case model.SortTitle:
		return strings.Compare(a.Title, b.Title)
	default:
		return a.Timestamp.Compare(b.Timestamp)
	}
}

// Delete removes the record if userID owns it
func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok || rec.UserID != userID {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

// DeleteAll removes every record owned by userID
func (s *MemoryStore) DeleteAll(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.records {
		if rec.UserID == userID {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Stats summarizes the user's records by band
func (s *MemoryStore) Stats(_ context.Context, userID string) (*model.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &model.Stats{}
	sum := 0
	for _, rec := range s.records {
		if rec.UserID != userID {
			continue
		}
		stats.TotalAnalyses++
		stats.CredibilityDistribution.Add(rec.CredibilityScore)
		sum += rec.CredibilityScore
	}
	stats.AverageCredibility = averageOf(sum, stats.TotalAnalyses)
	return stats, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
