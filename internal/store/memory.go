package store

import (
	"context"
	"sync"

	"resumescore/internal/types"
)

// MemoryStore keeps analyses in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*types.Analysis
	byResume map[string][]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]*types.Analysis),
		byResume: make(map[string][]string),
	}
}

// Save stores a copy of a and returns its ID
func (m *MemoryStore) Save(ctx context.Context, a *types.Analysis) (string, error) {
	if err := prepare(a); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[a.ID]; exists {
		return "", alreadyExists(a.ID)
	}
	m.byID[a.ID] = clone(a)
	if a.ResumeID != "" {
		m.byResume[a.ResumeID] = append(m.byResume[a.ResumeID], a.ID)
	}
	return a.ID, nil
}

// Get returns a copy of the analysis with id
func (m *MemoryStore) Get(ctx context.Context, id string) (*types.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byID[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(a), nil
}

// LatestForResume returns the most recent analysis of a resume. Analyses
// with equal timestamps resolve to the one saved last.
func (m *MemoryStore) LatestForResume(ctx context.Context, resumeID string) (*types.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *types.Analysis
	for _, id := range m.byResume[resumeID] {
		a := m.byID[id]
		if latest == nil || !a.AnalyzedAt.Before(latest.AnalyzedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, notFound(resumeID)
	}
	return clone(latest), nil
}

func (m *MemoryStore) Driver() string { return DriverMemory }

func (m *MemoryStore) Close() error { return nil }
