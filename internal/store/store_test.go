package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis(id, resumeID string, at time.Time) *types.Analysis {
	return &types.Analysis{
		ID:            id,
		ResumeID:      resumeID,
		PolicyVersion: "1.0.0",
		Scores:        types.SubscoreSet{ATS: 80, Completeness: 100, Keyword: 40, Formatting: 75},
		Overall:       74.5,
		Skills: []types.SkillMatch{
			{Name: "Python", Category: "Programming Languages", ConfidenceLevel: 90, Frequency: 2, InDemand: true},
		},
		Recommendations: []types.Recommendation{
			{Title: "Add Keywords", Category: types.CategoryKeywords, Priority: types.PriorityMedium, ImpactScore: 30, ActionSteps: []string{"a", "b"}},
		},
		AnalyzedAt: at,
	}
}

func TestMemoryStoreSaveGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := sampleAnalysis("a1", "r1", time.Now())

	id, err := s.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "a1", id)

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	// Stored values are isolated from caller mutation
	a.Skills[0].Name = "Mutated"
	a.Recommendations[0].ActionSteps[0] = "changed"
	got.Skills[0].Name = "AlsoMutated"
	again, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Python", again.Skills[0].Name)
	assert.Equal(t, "a", again.Recommendations[0].ActionSteps[0])
}

func TestMemoryStoreErrors(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAnalysisNotFound))
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))

	_, err = s.Save(ctx, sampleAnalysis("dup", "r", time.Now()))
	require.NoError(t, err)
	_, err = s.Save(ctx, sampleAnalysis("dup", "r", time.Now()))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAnalysisExists))

	_, err = s.Save(ctx, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestMemoryStoreAssignsID(t *testing.T) {
	s := NewMemoryStore()
	a := sampleAnalysis("", "r", time.Now())
	id, err := s.Save(context.Background(), a)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, a.ID)
}

func TestMemoryStoreLatestForResume(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, a := range []*types.Analysis{
		sampleAnalysis("old", "r1", base),
		sampleAnalysis("new", "r1", base.Add(time.Hour)),
		sampleAnalysis("older", "r1", base.Add(-time.Hour)),
		sampleAnalysis("other", "r2", base.Add(2*time.Hour)),
	} {
		_, err := s.Save(ctx, a)
		require.NoError(t, err)
	}

	got, err := s.LatestForResume(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)

	_, err = s.LatestForResume(ctx, "r3")
	assert.True(t, errors.HasCode(err, errors.ErrCodeAnalysisNotFound))
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Save(ctx, sampleAnalysis(fmt.Sprintf("id-%d", i), "r", time.Now()))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		_, err := s.Get(ctx, fmt.Sprintf("id-%d", i))
		assert.NoError(t, err)
	}
}

func TestNewSelectsDriver(t *testing.T) {
	s, err := New(config.StoreConfig{Driver: DriverMemory}, nil)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	s, err = New(config.StoreConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	_, err = New(config.StoreConfig{Driver: "sqlite"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestRecordConversion(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	a := sampleAnalysis("id", "resume", at)
	a.StrengthsSummary = "strong"
	a.Augmented = true

	rec := toRecord(a)
	assert.Equal(t, "analyses", rec.TableName())
	assert.Equal(t, a, fromRecord(rec))

	empty := fromRecord(analysisRecord{ID: "x"})
	assert.NotNil(t, empty.Skills)
	assert.NotNil(t, empty.Recommendations)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormLogLevel("warn"), gormLogLevel("unknown"))
	assert.NotEqual(t, gormLogLevel("silent"), gormLogLevel("info"))
}
