// Package store persists immutable analyses.
package store

import (
	"context"
	"fmt"
	"slices"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/types"

	"github.com/google/uuid"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Store persists analyses. Analyses are insert-only: saving an ID twice
// fails with ANALYSIS_EXISTS.
type Store interface {
	Save(ctx context.Context, a *types.Analysis) (string, error)
	Get(ctx context.Context, id string) (*types.Analysis, error)
	LatestForResume(ctx context.Context, resumeID string) (*types.Analysis, error)
	Driver() string
	Close() error
}

// New selects a Store implementation by driver name
func New(cfg config.StoreConfig, logger *errors.Logger) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres:
		return NewPostgresStore(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported store driver: %s", cfg.Driver), nil)
	}
}

func notFound(id string) error {
	return errors.NewStorageError(errors.ErrCodeAnalysisNotFound,
		fmt.Sprintf("analysis %s not found", id), nil).WithContext("id", id)
}

func alreadyExists(id string) error {
	return errors.NewStorageError(errors.ErrCodeAnalysisExists,
		fmt.Sprintf("analysis %s already exists", id), nil).WithContext("id", id)
}

// prepare validates a before saving and assigns an ID when missing
func prepare(a *types.Analysis) error {
	if a == nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "analysis is nil", nil)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// clone returns a deep copy so callers never share slices with the store
func clone(a *types.Analysis) *types.Analysis {
	c := *a
	c.Skills = slices.Clone(a.Skills)
	if a.Recommendations != nil {
		c.Recommendations = make([]types.Recommendation, len(a.Recommendations))
		for i, r := range a.Recommendations {
			r.ActionSteps = slices.Clone(r.ActionSteps)
			c.Recommendations[i] = r
		}
	}
	return &c
}
