package store

import (
	"context"
	stderrors "errors"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/types"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// analysisRecord is the database row for one analysis
type analysisRecord struct {
	ID                string                 `gorm:"type:varchar(64);primaryKey"`
	ResumeID          string                 `gorm:"type:varchar(64);index;not null"`
	FileName          string                 `gorm:"type:text"`
	TargetRole        string                 `gorm:"type:text"`
	Industry          string                 `gorm:"type:text"`
	PolicyVersion     string                 `gorm:"type:varchar(32)"`
	Overall           float64                `gorm:"not null"`
	Scores            types.SubscoreSet      `gorm:"type:jsonb;serializer:json"`
	StrengthsSummary  string                 `gorm:"type:text"`
	WeaknessesSummary string                 `gorm:"type:text"`
	Augmented         bool                   `gorm:"not null;default:false"`
	Signals           types.SectionSignals   `gorm:"type:jsonb;serializer:json"`
	Skills            []types.SkillMatch     `gorm:"type:jsonb;serializer:json"`
	Recommendations   []types.Recommendation `gorm:"type:jsonb;serializer:json"`
	AnalyzedAt        time.Time              `gorm:"index;not null"`
	CreatedAt         time.Time              `gorm:"autoCreateTime"`
}

func (analysisRecord) TableName() string {
	return "analyses"
}

// PostgresStore persists analyses in PostgreSQL through gorm
type PostgresStore struct {
	db *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to cfg.DSN and migrates the analyses table
func NewPostgresStore(cfg config.StoreConfig, log *errors.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed,
			"failed to connect to database", err)
	}

	if err := db.AutoMigrate(&analysisRecord{}); err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed,
			"failed to migrate database", err)
	}

	if log != nil {
		log.Info("Analysis store ready", "driver", DriverPostgres)
	}
	return &PostgresStore{db: db}, nil
}

// Save inserts a. Existing rows are never updated.
func (p *PostgresStore) Save(ctx context.Context, a *types.Analysis) (string, error) {
	if err := prepare(a); err != nil {
		return "", err
	}

	rec := toRecord(a)
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return "", alreadyExists(a.ID)
		}
		return "", errors.NewStorageError(errors.ErrCodeStorageFailed,
			"failed to save analysis", err).WithContext("id", a.ID)
	}
	return a.ID, nil
}

// Get loads the analysis with id
func (p *PostgresStore) Get(ctx context.Context, id string) (*types.Analysis, error) {
	var rec analysisRecord
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed,
			"failed to load analysis", err).WithContext("id", id)
	}
	return fromRecord(rec), nil
}

// LatestForResume loads the most recent analysis of a resume
func (p *PostgresStore) LatestForResume(ctx context.Context, resumeID string) (*types.Analysis, error) {
	var rec analysisRecord
	err := p.db.WithContext(ctx).
		Where("resume_id = ?", resumeID).
		Order("analyzed_at DESC, created_at DESC").
		First(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(resumeID)
		}
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed,
			"failed to load analysis", err).WithContext("resume_id", resumeID)
	}
	return fromRecord(rec), nil
}

func (p *PostgresStore) Driver() string { return DriverPostgres }

// Close closes the underlying connection pool
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func toRecord(a *types.Analysis) analysisRecord {
	c := clone(a)
	return analysisRecord{
		ID:                c.ID,
		ResumeID:          c.ResumeID,
		FileName:          c.FileName,
		TargetRole:        c.TargetRole,
		Industry:          c.Industry,
		PolicyVersion:     c.PolicyVersion,
		Overall:           c.Overall,
		Scores:            c.Scores,
		StrengthsSummary:  c.StrengthsSummary,
		WeaknessesSummary: c.WeaknessesSummary,
		Augmented:         c.Augmented,
		Signals:           c.Signals,
		Skills:            c.Skills,
		Recommendations:   c.Recommendations,
		AnalyzedAt:        c.AnalyzedAt.UTC(),
	}
}

func fromRecord(rec analysisRecord) *types.Analysis {
	a := &types.Analysis{
		ID:                rec.ID,
		ResumeID:          rec.ResumeID,
		FileName:          rec.FileName,
		TargetRole:        rec.TargetRole,
		Industry:          rec.Industry,
		PolicyVersion:     rec.PolicyVersion,
		Scores:            rec.Scores,
		Overall:           rec.Overall,
		StrengthsSummary:  rec.StrengthsSummary,
		WeaknessesSummary: rec.WeaknessesSummary,
		Augmented:         rec.Augmented,
		Signals:           rec.Signals,
		Skills:            rec.Skills,
		Recommendations:   rec.Recommendations,
		AnalyzedAt:        rec.AnalyzedAt,
	}
	if a.Skills == nil {
		a.Skills = []types.SkillMatch{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []types.Recommendation{}
	}
	return a
}
