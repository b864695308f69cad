package engine

import (
	"context"
	"strings"

	"resumescore/internal/ai"
	"resumescore/internal/common"
	"resumescore/internal/errors"
	"resumescore/internal/types"
)

// MatchJob compares a resume with a job description. Only invalid requests
// fail; model failures yield a zero score with Success false.
func (a *Analyzer) MatchJob(ctx context.Context, req types.JobMatchRequest) (types.JobMatch, error) {
	fallback := types.JobMatch{MatchingKeywords: []string{}, MissingKeywords: []string{}}
	if err := common.ValidateStruct(req); err != nil {
		return fallback, err
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return fallback, errors.NewValidationError(errors.ErrCodeEmptyJobDescription,
			"job description is empty", nil)
	}
	if a.augmenter == nil {
		return fallback, nil
	}

	match, err := a.augmenter.MatchJob(ctx, req.ResumeText, req.JobDescription)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeValidation) {
			return fallback, err
		}
		a.logFallback(err, "AI job match unavailable, using fallback")
	}
	return match, nil
}

// Rewrite improves one resume section. Model failures return the section
// unchanged with Augmented false.
func (a *Analyzer) Rewrite(ctx context.Context, req types.RewriteRequest) (types.RewriteResult, error) {
	result := types.RewriteResult{
		SectionType: req.SectionType,
		Original:    req.SectionText,
		Rewritten:   req.SectionText,
	}
	if err := common.ValidateStruct(req); err != nil {
		return result, err
	}
	if strings.TrimSpace(req.SectionText) == "" {
		return result, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"section text is empty", nil)
	}
	if a.augmenter == nil {
		return result, nil
	}

	rewritten, err := a.augmenter.Rewrite(ctx, req.SectionText, req.SectionType)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeValidation) {
			return result, err
		}
		a.logFallback(err, "AI rewrite unavailable, returning original section",
			"section_type", req.SectionType)
		return result, nil
	}
	result.Rewritten = rewritten
	result.Augmented = true
	return result, nil
}

// Chat answers a question about a resume. Model failures answer with
// ai.ChatUnavailableMessage.
func (a *Analyzer) Chat(ctx context.Context, req types.ChatRequest) (types.ChatAnswer, error) {
	answer := types.ChatAnswer{
		Question: strings.TrimSpace(req.Question),
		Answer:   ai.ChatUnavailableMessage,
	}
	if err := common.ValidateStruct(req); err != nil {
		return answer, err
	}
	if answer.Question == "" {
		return answer, errors.NewValidationError(errors.ErrCodeEmptyQuestion,
			"question is empty", nil)
	}
	if a.augmenter == nil {
		return answer, nil
	}

	reply, err := a.augmenter.Chat(ctx, req.Question, req.ResumeContext)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeValidation) {
			return answer, err
		}
		a.logFallback(err, "AI chat unavailable, using fallback answer")
		return answer, nil
	}
	answer.Answer = reply
	answer.Augmented = true
	return answer, nil
}

func (a *Analyzer) logFallback(err error, message string, args ...any) {
	if a.logger != nil {
		a.logger.LogError(err, message, args...)
	}
}
