// Package engine orchestrates one resume analysis: skill matching and
// section analysis in parallel, scoring, recommendations and the optional
// AI summary.
package engine

import (
	"context"
	"time"

	"resumescore/internal/ai"
	"resumescore/internal/common"
	"resumescore/internal/errors"
	"resumescore/internal/extract"
	"resumescore/internal/observability"
	"resumescore/internal/recommend"
	"resumescore/internal/scoring"
	"resumescore/internal/sections"
	"resumescore/internal/taxonomy"
	"resumescore/internal/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultAugmentationTimeout = 20 * time.Second

// Analyzer produces immutable analyses. It is safe for concurrent use.
type Analyzer struct {
	matcher        *taxonomy.Matcher
	policy         *scoring.Policy
	recommender    *recommend.Generator
	augmenter      *ai.Augmenter
	extractor      *extract.Extractor
	augmentTimeout time.Duration
	clock          func() time.Time
	newID          func() string
	logger         *errors.Logger
	metrics        *observability.Metrics
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithAugmenter enables AI summaries for requests that ask for them
func WithAugmenter(aug *ai.Augmenter) Option {
	return func(a *Analyzer) { a.augmenter = aug }
}

// WithExtractor enables AnalyzeFile
func WithExtractor(e *extract.Extractor) Option {
	return func(a *Analyzer) { a.extractor = e }
}

// WithMatcher replaces the embedded skill taxonomy
func WithMatcher(m *taxonomy.Matcher) Option {
	return func(a *Analyzer) { a.matcher = m }
}

// WithClock fixes the analysis timestamp source
func WithClock(clock func() time.Time) Option {
	return func(a *Analyzer) { a.clock = clock }
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(newID func() string) Option {
	return func(a *Analyzer) { a.newID = newID }
}

// WithAugmentationTimeout bounds the whole augmentation step
func WithAugmentationTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.augmentTimeout = d
		}
	}
}

// WithMetrics records analysis metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// New creates an Analyzer. A nil policy selects the embedded one.
func New(policy *scoring.Policy, logger *errors.Logger, opts ...Option) *Analyzer {
	if policy == nil {
		policy = scoring.DefaultPolicy()
	}
	a := &Analyzer{
		matcher:        taxonomy.Default(),
		policy:         policy,
		recommender:    recommend.NewGenerator(policy),
		augmentTimeout: defaultAugmentationTimeout,
		clock:          time.Now,
		newID:          uuid.NewString,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PolicyVersion returns the version of the active scoring policy
func (a *Analyzer) PolicyVersion() string {
	return a.policy.Version
}

// Policy returns the active scoring policy
func (a *Analyzer) Policy() *scoring.Policy {
	return a.policy
}

// Augmenter returns the configured augmenter, or nil
func (a *Analyzer) Augmenter() *ai.Augmenter {
	return a.augmenter
}

// Analyze scores req.Text. Only request validation and cancellation fail
// the analysis; augmentation failures fall back to the band summary.
func (a *Analyzer) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.Analysis, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	start := time.Now()

	var (
		skills  []types.SkillMatch
		signals types.SectionSignals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		skills = a.matcher.Match(req.Text)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		signals = sections.AnalyzeSections(req.Text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.NewInternalError("ANALYSIS_CANCELLED", "analysis cancelled", err)
	}

	result := scoring.Compute(signals, skills, a.policy)
	recs := a.recommender.Generate(recommend.Input{
		Scores:  result.Scores,
		Signals: signals,
		Skills:  skills,
	})

	resumeID := req.ResumeID
	if resumeID == "" {
		resumeID = a.newID()
	}

	analysis := &types.Analysis{
		ID:              a.newID(),
		ResumeID:        resumeID,
		FileName:        req.FileName,
		TargetRole:      req.TargetRole,
		Industry:        req.Industry,
		PolicyVersion:   a.policy.Version,
		Scores:          result.Scores,
		Overall:         result.Overall,
		Signals:         signals,
		Skills:          skills,
		Recommendations: recs,
		AnalyzedAt:      a.clock().UTC(),
	}

	summary := ai.FallbackSummary(result.Overall)
	if req.Augment && a.augmenter != nil {
		summary, analysis.Augmented = a.summarize(ctx, req, result.Overall)
	}
	analysis.StrengthsSummary = summary.Strengths
	analysis.WeaknessesSummary = summary.Weaknesses

	a.metrics.RecordAnalysis(ctx, time.Since(start), analysis.Overall, analysis.Augmented, analysis.PolicyVersion)
	if a.logger != nil {
		a.logger.Debug("Analysis completed",
			"analysis_id", analysis.ID,
			"resume_id", analysis.ResumeID,
			"overall", analysis.Overall,
			"skills", len(skills),
			"recommendations", len(recs),
			"augmented", analysis.Augmented,
			"duration", time.Since(start).String())
	}
	return analysis, nil
}

// summarize runs the AI summary under the augmentation deadline
func (a *Analyzer) summarize(ctx context.Context, req types.AnalyzeRequest, overall float64) (ai.Summary, bool) {
	ctx, cancel := context.WithTimeout(ctx, a.augmentTimeout)
	defer cancel()

	summary, err := a.augmenter.Summarize(ctx, req.Text, overall, req.TargetRole)
	if err != nil {
		if a.logger != nil {
			a.logger.LogError(err, "AI summary unavailable, using fallback",
				"resume_id", req.ResumeID)
		}
		return summary, false
	}
	return summary, true
}

// AnalyzeFile extracts the text of data and analyzes it. Extraction errors
// are returned as is.
func (a *Analyzer) AnalyzeFile(ctx context.Context, data []byte, req types.AnalyzeRequest) (*types.Analysis, error) {
	if a.extractor == nil {
		return nil, errors.NewInternalError("EXTRACTOR_MISSING", "no extractor configured", nil)
	}
	text, err := a.extractor.ExtractText(ctx, data, req.FileName)
	if err != nil {
		return nil, err
	}
	req.Text = text
	return a.Analyze(ctx, req)
}
