package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"resumescore/internal/ai"
	"resumescore/internal/common"
	"resumescore/internal/config"
	"resumescore/internal/engine"
	"resumescore/internal/errors"
	"resumescore/internal/extract"
	"resumescore/internal/observability"
	"resumescore/internal/scoring"
	"resumescore/internal/store"
)

// app holds the services shared by every command
type app struct {
	cfg       *config.Config
	logger    *errors.Logger
	completer ai.ChatCompleter
	augmenter *ai.Augmenter
	extractor *extract.Extractor
	analyzer  *engine.Analyzer
	store     store.Store
}

// newApp wires the completer, the analyzer and the store from cfg.
// metrics may be nil.
func newApp(ctx context.Context, cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) (*app, error) {
	policy, err := scoring.LoadPolicy(cfg.Engine.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring policy: %w", err)
	}

	completer, err := ai.NewCompleter(ctx, cfg, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI completer: %w", err)
	}

	st, err := store.New(cfg.Store, logger)
	if err != nil {
		_ = completer.Close()
		return nil, fmt.Errorf("failed to open analysis store: %w", err)
	}

	augmenter := ai.NewAugmenter(completer, cfg, logger, metrics)
	extractor := extract.New(cfg.Extraction, metrics)
	analyzer := engine.New(policy, logger,
		engine.WithAugmenter(augmenter),
		engine.WithExtractor(extractor),
		engine.WithAugmentationTimeout(cfg.Engine.AugmentationTimeout),
		engine.WithMetrics(metrics))

	logger.Debug("Application services ready",
		"policy_version", analyzer.PolicyVersion(),
		"ai_provider", completer.Name(),
		"store", st.Driver())

	return &app{
		cfg:       cfg,
		logger:    logger,
		completer: completer,
		augmenter: augmenter,
		extractor: extractor,
		analyzer:  analyzer,
		store:     st,
	}, nil
}

// appFromContext builds an app from the config and logger in ctx
func appFromContext(ctx context.Context) (*app, error) {
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	logger, err := getLoggerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, logger, nil)
}

// extractText returns the sanitized text of a file read from disk
func (a *app) extractText(ctx context.Context, file common.InputFile) (string, error) {
	return a.extractor.ExtractText(ctx, file.Data, filepath.Base(file.Name))
}

// fileProcessor reads command line files up to the extraction size limit
func (a *app) fileProcessor() *common.FileProcessor {
	return common.NewFileProcessor(a.logger, a.cfg.Extraction.MaxFileSize)
}

// Close releases the store and the completer
func (a *app) Close() error {
	return stderrors.Join(a.store.Close(), a.completer.Close())
}
