package cache

import (
	"context"
	"sync"
	"time"

	"github.com/spigell/ats-matcher/internal/models"
)

type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	result  models.MatchResult
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (*models.MatchResult, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}

	result := cloneResult(entry.result)
	return &result, true, nil
}

func (m *Memory) Set(_ context.Context, key string, result models.MatchResult, ttl time.Duration) error {
	entry := memoryEntry{result: cloneResult(result)}
	if ttl > 0 {
		entry.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

// cloneResult copies the category and match slices so callers never share
// them with a stored entry.
func cloneResult(r models.MatchResult) models.MatchResult {
	if r.CategoryScores == nil {
		return r
	}
	scores := make([]models.CategoryScore, len(r.CategoryScores))
	for i, cs := range r.CategoryScores {
		if cs.Matches != nil {
			cs.Matches = append([]models.RequirementMatch(nil), cs.Matches...)
		}
		scores[i] = cs
	}
	r.CategoryScores = scores
	return r
}
