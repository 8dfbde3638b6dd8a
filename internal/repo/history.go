package repo

import (
	"context"
	"sync"
	"time"

	"github.com/portstack/surgeops/internal/models"
)

const (
	// DefaultListLimit applies when callers pass a non-positive limit.
	DefaultListLimit = 100
	// MaxListLimit caps a single history page.
	MaxListLimit = 500
)

// HistoryRepo persists surge banner transitions and plan decisions.
type HistoryRepo interface {
	RecordTransition(ctx context.Context, t models.SurgeTransition) error
	RecordDecision(ctx context.Context, d models.PlanDecision) error
	ListTransitions(ctx context.Context, since time.Time, limit int) ([]models.SurgeTransition, error)
	ListDecisions(ctx context.Context, limit int) ([]models.PlanDecision, error)
}

// NormaliseLimit clamps a requested page size.
func NormaliseLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// MemoryStore keeps the most recent history in process. Older entries are
// dropped once capacity is reached.
type MemoryStore struct {
	mu          sync.RWMutex
	capacity    int
	transitions []models.SurgeTransition
	decisions   []models.PlanDecision
}

// NewMemoryStore creates a store bounded to capacity entries per kind.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = MaxListLimit
	}
	return &MemoryStore{capacity: capacity}
}

// RecordTransition appends a transition.
func (s *MemoryStore) RecordTransition(_ context.Context, t models.SurgeTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = appendBounded(s.transitions, t, s.capacity)
	return nil
}

// RecordDecision appends a plan decision.
func (s *MemoryStore) RecordDecision(_ context.Context, d models.PlanDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = appendBounded(s.decisions, d, s.capacity)
	return nil
}

// ListTransitions returns transitions at or after since, newest first.
func (s *MemoryStore) ListTransitions(_ context.Context, since time.Time, limit int) ([]models.SurgeTransition, error) {
	limit = NormaliseLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SurgeTransition, 0, min(limit, len(s.transitions)))
	for i := len(s.transitions) - 1; i >= 0 && len(out) < limit; i-- {
		t := s.transitions[i]
		if !since.IsZero() && t.At.Before(since) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// ListDecisions returns plan decisions, newest first.
func (s *MemoryStore) ListDecisions(_ context.Context, limit int) ([]models.PlanDecision, error) {
	limit = NormaliseLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PlanDecision, 0, min(limit, len(s.decisions)))
	for i := len(s.decisions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.decisions[i])
	}
	return out, nil
}

func appendBounded[T any](items []T, item T, capacity int) []T {
	items = append(items, item)
	if len(items) > capacity {
		items = append(items[:0], items[len(items)-capacity:]...)
	}
	return items
}
